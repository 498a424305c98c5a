package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/database"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/deadline"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/reports"
)

// ReportHandler handles report CRUD plus the computed dashboard,
// tax-dates, and overdue endpoints.
type ReportHandler struct {
	db  database.Service
	svc *reports.Service
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db database.Service, svc *reports.Service) *ReportHandler {
	return &ReportHandler{db: db, svc: svc}
}

const reportColumns = `id, client_id, user_id, title, report_type, description,
	report_url, period_start::text, period_end::text, status,
	created_at::text, updated_at::text`

func scanReport(row interface{ Scan(...interface{}) error }, rep *models.Report) error {
	return row.Scan(
		&rep.ID, &rep.ClientID, &rep.UserID, &rep.Title, &rep.ReportType,
		&rep.Description, &rep.ReportURL, &rep.PeriodStart, &rep.PeriodEnd,
		&rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)
}

// ── Create ─────────────────────────────────────────────────────

// Create persists a new report record.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Faltan campos requeridos: user_id, title, report_type",
			"details": errs,
		})
		return
	}

	status := "draft"
	if req.Status != nil && *req.Status != "" {
		status = *req.Status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var rep models.Report
	err := scanReport(pool.QueryRow(ctx, `
		INSERT INTO reports (client_id, user_id, title, report_type, description,
			report_url, period_start, period_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+reportColumns,
		req.ClientID, req.UserID, req.Title, req.ReportType, req.Description,
		req.ReportURL, req.PeriodStart, req.PeriodEnd, status,
	), &rep)
	if err != nil {
		log.Printf("Error creating report: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create report")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Reporte creado exitosamente",
		"report":  rep,
	})
}

// ── ListByUser ─────────────────────────────────────────────────

// ListByUser returns a user's reports, newest first.
func (h *ReportHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	h.listReports(w, r, `WHERE user_id = $1`, userID)
}

// ListByClient returns a client's reports, newest first.
func (h *ReportHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")
	h.listReports(w, r, `WHERE client_id = $1`, clientID)
}

func (h *ReportHandler) listReports(w http.ResponseWriter, r *http.Request, where string, args ...interface{}) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		log.Printf("Error fetching reports: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	defer rows.Close()

	list := []models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := scanReport(rows, &rep); err != nil {
			log.Printf("Error scanning report: %v", err)
			continue
		}
		list = append(list, rep)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"reports": list,
	})
}

// ── ListByType ─────────────────────────────────────────────────

// ListByType returns a user's reports filtered by report type.
func (h *ReportHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	reportType := chi.URLParam(r, "report_type")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports
		WHERE user_id = $1 AND report_type = $2
		ORDER BY created_at DESC`, userID, reportType)
	if err != nil {
		log.Printf("Error fetching reports by type: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	defer rows.Close()

	list := []models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := scanReport(rows, &rep); err != nil {
			log.Printf("Error scanning report: %v", err)
			continue
		}
		list = append(list, rep)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"report_type": reportType,
		"reports":     list,
	})
}

// ── GetByID ────────────────────────────────────────────────────

// GetByID returns a single report.
func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "report_id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var rep models.Report
	err := scanReport(pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id), &rep)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"report": rep,
	})
}

// ── Update ─────────────────────────────────────────────────────

// updateReportRequest carries the mutable report fields; absent fields
// keep their current values.
type updateReportRequest struct {
	Title       *string `json:"title"`
	ReportType  *string `json:"report_type"`
	Description *string `json:"description"`
	ReportURL   *string `json:"report_url"`
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
	Status      *string `json:"status"`
}

// Update modifies a report and bumps its updated_at.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "report_id")

	var req updateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var rep models.Report
	err := scanReport(pool.QueryRow(ctx, `
		UPDATE reports SET
			title        = COALESCE($1, title),
			report_type  = COALESCE($2, report_type),
			description  = COALESCE($3, description),
			report_url   = COALESCE($4, report_url),
			period_start = COALESCE($5::date, period_start),
			period_end   = COALESCE($6::date, period_end),
			status       = COALESCE($7, status),
			updated_at   = NOW()
		WHERE id = $8
		RETURNING `+reportColumns,
		req.Title, req.ReportType, req.Description, req.ReportURL,
		req.PeriodStart, req.PeriodEnd, req.Status, id,
	), &rep)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Reporte actualizado exitosamente",
		"report":  rep,
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete removes a report.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "report_id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	result, err := pool.Exec(ctx, "DELETE FROM reports WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting report: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}

	if result.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"message": "Reporte eliminado exitosamente",
	})
}

// ── Dashboard ──────────────────────────────────────────────────

// Dashboard handles GET /api/reports/dashboard/{user_id}.
// A year without a calendar yields zero deadline counts, not an error.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.svc.Dashboard(ctx, userID, h.svc.Now().Year())
	if err != nil {
		log.Printf("Error computing dashboard for %s: %v", userID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to compute dashboard")
		return
	}

	JSON(w, http.StatusOK, stats)
}

// ── TaxDates ───────────────────────────────────────────────────

// TaxDates handles GET /api/reports/user/{user_id}/tax-dates?year=&days=.
func (h *ReportHandler) TaxDates(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	year := yearParam(r)

	windowDays := deadline.DefaultWindowDays
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d >= 0 {
		windowDays = d
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.svc.TaxDates(ctx, userID, year, windowDays)
	if errors.Is(err, reports.ErrNoCalendar) {
		JSONError(w, http.StatusNotFound,
			fmt.Sprintf("No existe calendario tributario para el año %d", year))
		return
	}
	if err != nil {
		log.Printf("Error generating tax dates report for %s: %v", userID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	if result.NoClients {
		// Distinguishable from "clients exist but nothing due": still a
		// 200, with an explicit message and an empty list.
		JSON(w, http.StatusOK, map[string]interface{}{
			"message": "No hay clientes registrados",
			"reports": result.Reports,
		})
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"year":          result.Year,
		"days_ahead":    result.DaysAhead,
		"total_clients": len(result.Reports),
		"reports":       result.Reports,
	})
}

// ── Overdue ────────────────────────────────────────────────────

// Overdue handles GET /api/reports/user/{user_id}/overdue?year=.
func (h *ReportHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	year := yearParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.svc.Overdue(ctx, userID, year)
	if errors.Is(err, reports.ErrNoCalendar) {
		JSONError(w, http.StatusNotFound,
			fmt.Sprintf("No existe calendario tributario para el año %d", year))
		return
	}
	if err != nil {
		log.Printf("Error generating overdue report for %s: %v", userID, err)
		JSONError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	if result.NoClients {
		JSON(w, http.StatusOK, map[string]interface{}{
			"message":       "No hay clientes registrados",
			"overdue_items": result.Items,
		})
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"year":          result.Year,
		"total_overdue": len(result.Items),
		"overdue_items": result.Items,
	})
}
