package models

// Client is a customer of the accountant (the owning user).
// The NIT may be missing or malformed; reporting skips such clients.
type Client struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Nombre     string  `json:"nombre"`
	NIT        *string `json:"nit"`
	TipoClient *string `json:"tipo_client"` // "natural" | "juridica" | custom tags
	CreatedAt  string  `json:"created_at"`
}

// CreateClientRequest defines the accepted fields for client creation/update.
type CreateClientRequest struct {
	Nombre     string  `json:"nombre"`
	NIT        *string `json:"nit"`
	TipoClient *string `json:"tipo_client"`
}

// Validate checks that required client fields are present.
func (r *CreateClientRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.Nombre == "" {
		errors["nombre"] = "El campo 'nombre' es requerido"
	}
	return errors
}
