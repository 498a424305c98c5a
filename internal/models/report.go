package models

// ── Reports ──────────────────────────────────────────────────────

// Report is an independently persisted report record.
type Report struct {
	ID          string  `json:"id"`
	ClientID    *string `json:"client_id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	ReportType  string  `json:"report_type"` // "tax_dates", "financial", "compliance", "custom"
	Description *string `json:"description"`
	ReportURL   *string `json:"report_url"`
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
	Status      string  `json:"status"` // "draft", "completed", "sent"
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// CreateReportRequest defines the accepted fields for report creation.
type CreateReportRequest struct {
	ClientID    *string `json:"client_id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	ReportType  string  `json:"report_type"`
	Description *string `json:"description"`
	ReportURL   *string `json:"report_url"`
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
	Status      *string `json:"status"`
}

// Validate checks that required report fields are present.
func (r *CreateReportRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.UserID == "" {
		errors["user_id"] = "user_id es requerido"
	}
	if r.Title == "" {
		errors["title"] = "title es requerido"
	}
	if r.ReportType == "" {
		errors["report_type"] = "report_type es requerido"
	}
	return errors
}

// ── Derived report shapes (computed, never persisted) ────────────

// DashboardStats summarizes an accountant's practice for the dashboard.
type DashboardStats struct {
	TotalClients      int `json:"total_clients"`
	TotalReports      int `json:"total_reports"`
	UpcomingDeadlines int `json:"upcoming_deadlines"`
	OverdueDeadlines  int `json:"overdue_deadlines"`
	ReportsThisMonth  int `json:"reports_this_month"`
}

// UpcomingDate is one itemized due date inside the lookahead window.
type UpcomingDate struct {
	TipoObligacion   string `json:"tipo_obligacion"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	Descripcion      string `json:"descripcion"`
	DaysUntilDue     int    `json:"days_until_due"`
}

// OverdueDate is one itemized due date already past.
type OverdueDate struct {
	TipoObligacion   string `json:"tipo_obligacion"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	Descripcion      string `json:"descripcion"`
	DaysOverdue      int    `json:"days_overdue"`
}

// TaxDatesReport itemizes a single client's upcoming and overdue dates.
type TaxDatesReport struct {
	ClientID      string         `json:"client_id"`
	ClientName    string         `json:"client_name"`
	NIT           string         `json:"nit"`
	UltimoDigito  int            `json:"ultimo_digito"`
	UpcomingDates []UpcomingDate `json:"upcoming_dates"`
	OverdueDates  []OverdueDate  `json:"overdue_dates"`
}

// OverdueItem is one strictly overdue obligation, tagged with the client
// it belongs to. The overdue report is flat across all clients.
type OverdueItem struct {
	ClientID         string `json:"client_id"`
	ClientName       string `json:"client_name"`
	NIT              string `json:"nit"`
	TipoObligacion   string `json:"tipo_obligacion"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	Descripcion      string `json:"descripcion"`
	DaysOverdue      int    `json:"days_overdue"`
}
