package models

// LoanState is the lifecycle state of a loan
type LoanState string

const (
	LoanStateActive               LoanState = "Activo"
	LoanStateSuccessfullyClosed   LoanState = "Exitoso"
	LoanStateUnsuccessfullyClosed LoanState = "Fallido"
)

// PaymentModality is how often the borrower pays
type PaymentModality string

const (
	PaymentModalityDaily     PaymentModality = "Diario"
	PaymentModalityWeekly    PaymentModality = "Semanal"
	PaymentModalityBiweekly  PaymentModality = "Quincenal"
	PaymentModalityFixedTerm PaymentModality = "Termino Fijo"
)

// LoanStates lists the states in display order.
var LoanStates = []LoanState{LoanStateActive, LoanStateSuccessfullyClosed, LoanStateUnsuccessfullyClosed}

// PaymentModalities lists the modalities in display order.
var PaymentModalities = []PaymentModality{PaymentModalityDaily, PaymentModalityWeekly, PaymentModalityBiweekly, PaymentModalityFixedTerm}

// Loan is a loan granted to a client by an employee.
// Amounts are es-CO formatted numerals ("100.000"); dates are epoch milliseconds.
type Loan struct {
	ID              string          `json:"id"`
	ClienteRef      *Ref            `json:"clienteRef" validate:"required"`
	EmpleadoRef     *Ref            `json:"empleadoRef" validate:"required"`
	MontoPrestado   string          `json:"monto_prestado" validate:"required,numeral"`
	Interes         *float64        `json:"interes" validate:"omitempty,gt=0"`
	MontoAbonado    string          `json:"monto_abonado" validate:"omitempty,numeral"`
	MontoAdeudado   string          `json:"monto_adeudado"`
	ModalidadDePago PaymentModality `json:"modalidadDePago" validate:"required,oneof=Diario Semanal Quincenal 'Termino Fijo'"`
	Estado          LoanState       `json:"estado" validate:"required,oneof=Activo Exitoso Fallido"`
	FechaInicio     int64           `json:"fechaInicio" validate:"required"`
	FechaFinal      int64           `json:"fechaFinal" validate:"required,gtefield=FechaInicio"`
}

func (l *Loan) GetID() string { return l.ID }
func (l *Loan) SetID(id string) { l.ID = id }
