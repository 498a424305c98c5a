package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/ctxkeys"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/database"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/storage"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/taxid"
)

// TaxCalendarHandler manages annual tax calendars and their dates.
type TaxCalendarHandler struct {
	db    database.Service
	store storage.Store
}

// NewTaxCalendarHandler creates a new TaxCalendarHandler.
func NewTaxCalendarHandler(db database.Service, store storage.Store) *TaxCalendarHandler {
	return &TaxCalendarHandler{db: db, store: store}
}

// ── Upload ─────────────────────────────────────────────────────

// Upload registers the annual tax calendar PDF.
// Only one calendar may exist per year: the UNIQUE constraint on the year
// column turns a concurrent duplicate into a 409, no existence probe needed.
func (h *TaxCalendarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		JSONError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Missing 'file' field in form data.")
		return
	}
	defer file.Close()

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil || year < 2000 || year > 2100 {
		JSONError(w, http.StatusBadRequest, "A valid 'year' field is required.")
		return
	}

	// The annual calendar is always a PDF.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		JSONError(w, http.StatusBadRequest, "Could not read file.")
		return
	}
	if contentType := http.DetectContentType(buffer[:n]); contentType != "application/pdf" {
		JSONError(w, http.StatusBadRequest, "The tax calendar must be a PDF file.")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		JSONError(w, http.StatusInternalServerError, "Failed to process file.")
		return
	}

	userID := ctxkeys.GetUserID(r.Context())
	safeName := sanitizeFilename(header.Filename)
	storagePath := fmt.Sprintf("tax-calendars/%d/%d_%s", year, time.Now().Unix(), safeName)

	info, err := h.store.Save(r.Context(), storagePath, file, "application/pdf")
	if err != nil {
		log.Printf("Calendar upload failed: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to save file.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var cal models.TaxCalendar
	err = pool.QueryRow(ctx, `
		INSERT INTO tax_calendars (year, file_name, file_url, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, year, file_name, file_url, uploaded_by, created_at::text
	`, year, header.Filename, info.URL, userID,
	).Scan(&cal.ID, &cal.Year, &cal.FileName, &cal.FileURL, &cal.UploadedBy, &cal.CreatedAt)
	if err != nil {
		// The stored object is orphaned on failure; remove it.
		if delErr := h.store.Delete(ctx, storagePath); delErr != nil {
			log.Printf("Failed to clean up calendar file %s: %v", storagePath, delErr)
		}
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict,
				fmt.Sprintf("Ya existe un calendario tributario para el año %d", year))
			return
		}
		log.Printf("Error creating tax calendar: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create tax calendar")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Calendario tributario subido correctamente",
		"calendar": cal,
	})
}

// ── AddDates ───────────────────────────────────────────────────

// AddDates bulk-inserts obligation dates for a calendar, one entry per
// (last digit, obligation type, due date).
func (h *TaxCalendarHandler) AddDates(w http.ResponseWriter, r *http.Request) {
	var req models.AddTaxDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.TaxCalendarID == "" || len(req.Dates) == 0 {
		JSONError(w, http.StatusBadRequest,
			"Datos incompletos: se requiere tax_calendar_id y array de fechas")
		return
	}

	for _, d := range req.Dates {
		if d.UltimoDigito == nil || d.TipoObligacion == "" || d.FechaVencimiento == "" {
			JSONError(w, http.StatusBadRequest,
				"Cada fecha debe tener: ultimo_digito, tipo_obligacion y fecha_vencimiento")
			return
		}
		if *d.UltimoDigito < 0 || *d.UltimoDigito > 9 {
			JSONError(w, http.StatusBadRequest, "ultimo_digito debe estar entre 0 y 9")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	inserted := []models.TaxDate{}
	for _, d := range req.Dates {
		var td models.TaxDate
		err := pool.QueryRow(ctx, `
			INSERT INTO tax_dates (tax_calendar_id, ultimo_digito, tipo_obligacion, fecha_vencimiento, descripcion)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, tax_calendar_id, ultimo_digito, tipo_obligacion,
				fecha_vencimiento::text, descripcion, created_at::text
		`, req.TaxCalendarID, *d.UltimoDigito, d.TipoObligacion, d.FechaVencimiento, d.Descripcion,
		).Scan(&td.ID, &td.TaxCalendarID, &td.UltimoDigito, &td.TipoObligacion,
			&td.FechaVencimiento, &td.Descripcion, &td.CreatedAt)
		if err != nil {
			log.Printf("Error inserting tax date: %v", err)
			JSONError(w, http.StatusInternalServerError, "Failed to insert tax dates")
			return
		}
		inserted = append(inserted, td)
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Fechas tributarias agregadas correctamente",
		"dates":   inserted,
	})
}

// ── DatesByClient ──────────────────────────────────────────────

// DatesByClient returns a registered client's obligation dates: the
// client's NIT determines the digit bucket of the year's calendar.
func (h *TaxCalendarHandler) DatesByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")
	year := yearParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var nit *string
	err := pool.QueryRow(ctx,
		"SELECT nit FROM clients WHERE id = $1", clientID,
	).Scan(&nit)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Cliente no encontrado")
		return
	}

	if nit == nil || *nit == "" {
		JSONError(w, http.StatusBadRequest, "El cliente no tiene NIT registrado")
		return
	}
	if !taxid.IsValid(*nit) {
		JSONError(w, http.StatusBadRequest, "El NIT del cliente no es válido")
		return
	}

	h.respondDatesForNit(ctx, w, *nit, year)
}

// ── DatesByNit ─────────────────────────────────────────────────

// DatesByNit returns the obligation dates for a raw NIT, without needing
// a registered client.
func (h *TaxCalendarHandler) DatesByNit(w http.ResponseWriter, r *http.Request) {
	nit := chi.URLParam(r, "nit")
	year := yearParam(r)

	if nit == "" {
		JSONError(w, http.StatusBadRequest, "Se requiere el NIT")
		return
	}
	if !taxid.IsValid(nit) {
		JSONError(w, http.StatusBadRequest, "NIT inválido")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.respondDatesForNit(ctx, w, nit, year)
}

// respondDatesForNit resolves the digit bucket for a validated NIT and
// writes the {nit, ultimo_digito, year, calendar_pdf, fechas} response.
func (h *TaxCalendarHandler) respondDatesForNit(ctx context.Context, w http.ResponseWriter, nit string, year int) {
	digit, err := taxid.LastDigit(nit)
	if err != nil {
		JSONError(w, http.StatusBadRequest, "NIT inválido")
		return
	}

	pool := h.db.GetPool()

	var cal models.TaxCalendar
	err = pool.QueryRow(ctx, `
		SELECT id, year, file_name, file_url, uploaded_by, created_at::text
		FROM tax_calendars WHERE year = $1
	`, year).Scan(&cal.ID, &cal.Year, &cal.FileName, &cal.FileURL, &cal.UploadedBy, &cal.CreatedAt)
	if err != nil {
		JSONError(w, http.StatusNotFound,
			fmt.Sprintf("No existe calendario tributario para el año %d", year))
		return
	}

	rows, err := pool.Query(ctx, `
		SELECT id, tax_calendar_id, ultimo_digito, tipo_obligacion,
			fecha_vencimiento::text, descripcion, created_at::text
		FROM tax_dates
		WHERE tax_calendar_id = $1 AND ultimo_digito = $2
		ORDER BY fecha_vencimiento ASC
	`, cal.ID, digit)
	if err != nil {
		log.Printf("Error fetching tax dates: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch tax dates")
		return
	}
	defer rows.Close()

	fechas := []models.TaxDate{}
	for rows.Next() {
		var d models.TaxDate
		if err := rows.Scan(&d.ID, &d.TaxCalendarID, &d.UltimoDigito, &d.TipoObligacion,
			&d.FechaVencimiento, &d.Descripcion, &d.CreatedAt); err != nil {
			log.Printf("Error scanning tax date: %v", err)
			continue
		}
		fechas = append(fechas, d)
	}

	JSON(w, http.StatusOK, models.TaxDatesByNit{
		NIT:          nit,
		UltimoDigito: digit,
		Year:         cal.Year,
		CalendarPDF:  cal.FileURL,
		Fechas:       fechas,
	})
}

// ── List ───────────────────────────────────────────────────────

// List returns all tax calendars, newest year first.
func (h *TaxCalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT id, year, file_name, file_url, uploaded_by, created_at::text
		FROM tax_calendars
		ORDER BY year DESC
	`)
	if err != nil {
		log.Printf("Error fetching tax calendars: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch tax calendars")
		return
	}
	defer rows.Close()

	calendars := []models.TaxCalendar{}
	for rows.Next() {
		var c models.TaxCalendar
		if err := rows.Scan(&c.ID, &c.Year, &c.FileName, &c.FileURL, &c.UploadedBy, &c.CreatedAt); err != nil {
			log.Printf("Error scanning tax calendar: %v", err)
			continue
		}
		calendars = append(calendars, c)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"calendars": calendars,
	})
}

// ── DatesByCalendar ────────────────────────────────────────────

// DatesByCalendar returns every date of one calendar, grouped by digit.
func (h *TaxCalendarHandler) DatesByCalendar(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "calendar_id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, `
		SELECT id, tax_calendar_id, ultimo_digito, tipo_obligacion,
			fecha_vencimiento::text, descripcion, created_at::text
		FROM tax_dates
		WHERE tax_calendar_id = $1
		ORDER BY ultimo_digito ASC, fecha_vencimiento ASC
	`, calendarID)
	if err != nil {
		log.Printf("Error fetching calendar dates: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch dates")
		return
	}
	defer rows.Close()

	dates := []models.TaxDate{}
	for rows.Next() {
		var d models.TaxDate
		if err := rows.Scan(&d.ID, &d.TaxCalendarID, &d.UltimoDigito, &d.TipoObligacion,
			&d.FechaVencimiento, &d.Descripcion, &d.CreatedAt); err != nil {
			log.Printf("Error scanning tax date: %v", err)
			continue
		}
		dates = append(dates, d)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"dates": dates,
	})
}

// yearParam reads the ?year= query parameter, defaulting to the current year.
func yearParam(r *http.Request) int {
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil {
		return y
	}
	return time.Now().Year()
}
