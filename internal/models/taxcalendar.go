package models

// ── Tax Calendar ─────────────────────────────────────────────────

// TaxCalendar is the annual tax calendar uploaded by an accountant.
// At most one calendar exists per year (UNIQUE constraint on year).
type TaxCalendar struct {
	ID         string `json:"id"`
	Year       int    `json:"year"`
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
	UploadedBy string `json:"uploaded_by"`
	CreatedAt  string `json:"created_at"`
}

// TaxDate is a single dated obligation within a calendar, keyed by the
// last digit of the taxpayer's NIT.
type TaxDate struct {
	ID               string  `json:"id"`
	TaxCalendarID    string  `json:"tax_calendar_id"`
	UltimoDigito     int     `json:"ultimo_digito"` // 0-9
	TipoObligacion   string  `json:"tipo_obligacion"`
	FechaVencimiento string  `json:"fecha_vencimiento"` // YYYY-MM-DD, no time component
	Descripcion      *string `json:"descripcion"`
	CreatedAt        string  `json:"created_at"`
}

// AddTaxDatesRequest is the bulk-insert payload for calendar dates.
type AddTaxDatesRequest struct {
	TaxCalendarID string         `json:"tax_calendar_id"`
	Dates         []TaxDateInput `json:"dates"`
}

// TaxDateInput is a single date within an AddTaxDatesRequest.
type TaxDateInput struct {
	UltimoDigito     *int    `json:"ultimo_digito"`
	TipoObligacion   string  `json:"tipo_obligacion"`
	FechaVencimiento string  `json:"fecha_vencimiento"`
	Descripcion      *string `json:"descripcion"`
}

// TaxDatesByNit is the response for NIT-keyed calendar lookups.
type TaxDatesByNit struct {
	NIT          string    `json:"nit"`
	UltimoDigito int       `json:"ultimo_digito"`
	Year         int       `json:"year"`
	CalendarPDF  string    `json:"calendar_pdf"`
	Fechas       []TaxDate `json:"fechas"`
}
