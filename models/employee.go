package models

// Employee is a loan officer. IDEmpleado is the internal staff code and may be absent.
type Employee struct {
	ID         string  `json:"id"`
	IDEmpleado *string `json:"idEmpleado,omitempty"`
	Nombres    string  `json:"nombres" validate:"required"`
	Apellidos  string  `json:"apellidos" validate:"required"`
	Correo     *string `json:"correo" validate:"omitempty,email"`
	Celular    string  `json:"celular"`
	Direccion  string  `json:"direccion"`
}

func (e *Employee) GetID() string { return e.ID }
func (e *Employee) SetID(id string) { e.ID = id }

func (e *Employee) FullName() string {
	return e.Nombres + " " + e.Apellidos
}
