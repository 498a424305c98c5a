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

// EventHandler handles calendar event HTTP requests.
type EventHandler struct {
	db database.Service
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(db database.Service) *EventHandler {
	return &EventHandler{db: db}
}

// ── List ───────────────────────────────────────────────────────

// List returns every event of the authenticated user's clients,
// soonest deadline first.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.GetUserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT e.id, e.client_id, e.titulo, e.descripcion,
			e.fecha_limite::text, e.estado, e.created_at::text
		FROM calendar_events e
		JOIN clients c ON c.id = e.client_id
		WHERE c.user_id = $1
		ORDER BY e.fecha_limite ASC
	`, userID)
	if err != nil {
		log.Printf("Error fetching events: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Titulo, &e.Descripcion,
			&e.FechaLimite, &e.Estado, &e.CreatedAt); err != nil {
			log.Printf("Error scanning event: %v", err)
			continue
		}
		events = append(events, e)
	}

	JSON(w, http.StatusOK, events)
}

// ── ListByClient ───────────────────────────────────────────────

// ListByClient returns a client's events, soonest deadline first.
func (h *EventHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT id, client_id, titulo, descripcion,
			fecha_limite::text, estado, created_at::text
		FROM calendar_events
		WHERE client_id = $1
		ORDER BY fecha_limite ASC
	`, clientID)
	if err != nil {
		log.Printf("Error fetching client events: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Titulo, &e.Descripcion,
			&e.FechaLimite, &e.Estado, &e.CreatedAt); err != nil {
			log.Printf("Error scanning event: %v", err)
			continue
		}
		events = append(events, e)
	}

	JSON(w, http.StatusOK, events)
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID returns a single event.
func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var e models.Event
	err := pool.QueryRow(ctx, `
		SELECT id, client_id, titulo, descripcion,
			fecha_limite::text, estado, created_at::text
		FROM calendar_events WHERE id = $1
	`, id).Scan(&e.ID, &e.ClientID, &e.Titulo, &e.Descripcion,
		&e.FechaLimite, &e.Estado, &e.CreatedAt)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}

	JSON(w, http.StatusOK, e)
}

// ── Create ─────────────────────────────────────────────────────

// Create adds a new calendar event for a client.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
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

	estado := "pendiente"
	if req.Estado != nil && *req.Estado != "" {
		estado = *req.Estado
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var e models.Event
	err := pool.QueryRow(ctx, `
		INSERT INTO calendar_events (client_id, titulo, descripcion, fecha_limite, estado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, client_id, titulo, descripcion, fecha_limite::text, estado, created_at::text
	`, req.ClientID, req.Titulo, req.Descripcion, req.FechaLimite, estado,
	).Scan(&e.ID, &e.ClientID, &e.Titulo, &e.Descripcion,
		&e.FechaLimite, &e.Estado, &e.CreatedAt)
	if err != nil {
		log.Printf("Error creating event: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	JSON(w, http.StatusCreated, e)
}

// ── Update ─────────────────────────────────────────────────────

// Update modifies an event.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateEventRequest
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

	estado := "pendiente"
	if req.Estado != nil && *req.Estado != "" {
		estado = *req.Estado
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var e models.Event
	err := pool.QueryRow(ctx, `
		UPDATE calendar_events
		SET titulo = $1, descripcion = $2, fecha_limite = $3, estado = $4
		WHERE id = $5
		RETURNING id, client_id, titulo, descripcion, fecha_limite::text, estado, created_at::text
	`, req.Titulo, req.Descripcion, req.FechaLimite, estado, id,
	).Scan(&e.ID, &e.ClientID, &e.Titulo, &e.Descripcion,
		&e.FechaLimite, &e.Estado, &e.CreatedAt)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Evento actualizado correctamente",
		"event":   e,
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	result, err := pool.Exec(ctx, "DELETE FROM calendar_events WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting event: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	if result.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Evento eliminado correctamente",
	})
}
