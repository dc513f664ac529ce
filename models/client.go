package models

// Client is a borrower
type Client struct {
	ID        string  `json:"id"`
	Nombres   string  `json:"nombres" validate:"required"`
	Apellidos string  `json:"apellidos" validate:"required"`
	Correo    *string `json:"correo" validate:"omitempty,email"`
	Celular   string  `json:"celular"`
	Direccion string  `json:"direccion"`
}

func (c *Client) GetID() string { return c.ID }
func (c *Client) SetID(id string) { c.ID = id }

// FullName returns the label shown in pickers.
func (c *Client) FullName() string {
	return c.Nombres + " " + c.Apellidos
}
