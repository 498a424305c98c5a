package models

// Event is a calendar event tied to a client (a meeting, a filing
// reminder, any dated commitment the accountant tracks manually).
type Event struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	Titulo      string  `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	// Deadline date in YYYY-MM-DD format.
	FechaLimite string `json:"fecha_limite"`
	Estado      string `json:"estado"` // "pendiente", "completado"
	CreatedAt   string `json:"created_at"`
}

// CreateEventRequest defines the accepted fields for event creation/update.
type CreateEventRequest struct {
	ClientID    string  `json:"client_id"`
	Titulo      string  `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	FechaLimite string  `json:"fecha_limite"`
	Estado      *string `json:"estado"`
}

// Validate checks that required event fields are present.
func (r *CreateEventRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.ClientID == "" {
		errors["client_id"] = "client_id es requerido"
	}
	if r.Titulo == "" {
		errors["titulo"] = "titulo es requerido"
	}
	if r.FechaLimite == "" {
		errors["fecha_limite"] = "fecha_limite es requerida"
	}
	return errors
}
