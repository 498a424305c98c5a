package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/ctxkeys"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/database"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
)

// ClientHandler handles client-related HTTP requests.
type ClientHandler struct {
	db database.Service
}

// NewClientHandler creates a new ClientHandler with the provided database service.
func NewClientHandler(db database.Service) *ClientHandler {
	return &ClientHandler{db: db}
}

// ── List ───────────────────────────────────────────────────────

// List returns all clients of the authenticated user, newest first.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.GetUserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT id, user_id, nombre, nit, tipo_client, created_at::text
		FROM clients
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		log.Printf("Error fetching clients: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Nombre, &c.NIT, &c.TipoClient, &c.CreatedAt); err != nil {
			log.Printf("Error scanning client: %v", err)
			continue
		}
		clients = append(clients, c)
	}

	JSON(w, http.StatusOK, clients)
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID returns a single client.
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var c models.Client
	err := pool.QueryRow(ctx, `
		SELECT id, user_id, nombre, nit, tipo_client, created_at::text
		FROM clients WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &c.Nombre, &c.NIT, &c.TipoClient, &c.CreatedAt)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Cliente no encontrado")
		return
	}

	JSON(w, http.StatusOK, c)
}

// ── Create ─────────────────────────────────────────────────────

// Create adds a new client owned by the authenticated user.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	userID := ctxkeys.GetUserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var c models.Client
	err := pool.QueryRow(ctx, `
		INSERT INTO clients (user_id, nombre, nit, tipo_client)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, nombre, nit, tipo_client, created_at::text
	`, userID, req.Nombre, req.NIT, req.TipoClient,
	).Scan(&c.ID, &c.UserID, &c.Nombre, &c.NIT, &c.TipoClient, &c.CreatedAt)
	if err != nil {
		log.Printf("Error creating client: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	JSON(w, http.StatusCreated, c)
}

// ── Update ─────────────────────────────────────────────────────

// Update modifies a client's details.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	userID := ctxkeys.GetUserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	// Ownership is part of the WHERE clause: updating someone else's
	// client looks identical to updating a missing one.
	var c models.Client
	err := pool.QueryRow(ctx, `
		UPDATE clients
		SET nombre = $1, nit = $2, tipo_client = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, nombre, nit, tipo_client, created_at::text
	`, req.Nombre, req.NIT, req.TipoClient, id, userID,
	).Scan(&c.ID, &c.UserID, &c.Nombre, &c.NIT, &c.TipoClient, &c.CreatedAt)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Cliente no encontrado")
		return
	}

	JSON(w, http.StatusOK, c)
}

// ── Delete ─────────────────────────────────────────────────────

// Delete removes a client. Calendar events go with it; reports and
// uploads keep their rows with client_id set to NULL.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := ctxkeys.GetUserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	result, err := pool.Exec(ctx,
		"DELETE FROM clients WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		log.Printf("Error deleting client: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	if result.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Cliente no encontrado")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Cliente eliminado correctamente",
	})
}
