package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"prestamos/database"
	"prestamos/models"
	"prestamos/utils"
)

// LoanParties holds the documents a loan references. A field is nil when
// the reference is empty or its document no longer exists.
type LoanParties struct {
	Cliente  *models.Client   `json:"cliente"`
	Empleado *models.Employee `json:"empleado"`
}

// LoanDetails is what the loan detail page shows
type LoanDetails struct {
	Prestamo *models.Loan `json:"prestamo"`
	LoanParties
	Dias  int    `json:"dias"`
	Badge string `json:"badge"`
}

// LoanService manages PRESTAMOS
type LoanService struct {
	*Repository[models.Loan, *models.Loan]
	clients   *ClientService
	employees *EmployeeService
	mailer    Mailer
}

// NewLoanService creates a new LoanService. mailer may be nil.
func NewLoanService(db database.Store, clients *ClientService, employees *EmployeeService, mailer Mailer, notifier Notifier) *LoanService {
	return &LoanService{
		Repository: NewRepository[models.Loan](db, models.CollectionLoans, notifier),
		clients:    clients,
		employees:  employees,
		mailer:     mailer,
	}
}

// Create derives the owed amount and writes the loan
func (s *LoanService) Create(ctx context.Context, loan *models.Loan) error {
	if err := s.derive(loan); err != nil {
		return err
	}
	return s.Repository.Create(ctx, loan)
}

// Update derives the owed amount and merges the loan. When the loan moves
// to Exitoso the client is told by mail.
func (s *LoanService) Update(ctx context.Context, loan *models.Loan) error {
	if err := s.derive(loan); err != nil {
		return err
	}
	previous, err := s.GetByID(ctx, loan.ID)
	if err != nil {
		return err
	}
	if err := s.Repository.Update(ctx, loan); err != nil {
		return err
	}
	if loan.Estado == models.LoanStateSuccessfullyClosed && previous != nil && previous.Estado != models.LoanStateSuccessfullyClosed {
		s.notifyClosed(ctx, loan)
	}
	return nil
}

func (s *LoanService) derive(loan *models.Loan) error {
	if err := checkParties(loan); err != nil {
		s.notifier.Error(err, "Referencia inválida")
		return err
	}
	owed, err := OwedAmount(loan)
	if err != nil {
		s.notifier.Error(err, "Monto inválido")
		return err
	}
	loan.MontoAdeudado = owed
	return nil
}

func (s *LoanService) notifyClosed(ctx context.Context, loan *models.Loan) {
	if s.mailer == nil || loan.ClienteRef == nil {
		return
	}
	client, err := s.clients.GetByID(ctx, loan.ClienteRef.ID)
	if err != nil || client == nil || client.Correo == nil || *client.Correo == "" {
		return
	}
	if err := s.mailer.SendLoanClosedNotification(*client.Correo, client, loan); err != nil {
		utils.LogWarn("closed loan mail for %s failed: %v", loan.ID, err)
	}
}

func checkParties(loan *models.Loan) error {
	if err := models.ExpectCollection(loan.ClienteRef, models.CollectionClients); err != nil {
		return err
	}
	return models.ExpectCollection(loan.EmpleadoRef, models.CollectionEmployees)
}

// ClientAndEmployeeData resolves both references of loan, one lookup each.
// A reference into any collection other than CLIENTES or EMPLEADOS is rejected.
func (s *LoanService) ClientAndEmployeeData(ctx context.Context, loan *models.Loan) (LoanParties, error) {
	var parties LoanParties
	if err := checkParties(loan); err != nil {
		return parties, fmt.Errorf("resolve loan %s: %w", loan.ID, err)
	}
	g, gctx := errgroup.WithContext(ctx)
	if loan.ClienteRef != nil {
		g.Go(func() (err error) {
			parties.Cliente, err = s.clients.GetByID(gctx, loan.ClienteRef.ID)
			return err
		})
	}
	if loan.EmpleadoRef != nil {
		g.Go(func() (err error) {
			parties.Empleado, err = s.employees.GetByID(gctx, loan.EmpleadoRef.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return LoanParties{}, fmt.Errorf("resolve loan %s: %w", loan.ID, err)
	}
	return parties, nil
}

// Details loads a loan with its parties, its duration in days and its badge.
// It returns nil when the loan does not exist.
func (s *LoanService) Details(ctx context.Context, id string) (*LoanDetails, error) {
	loan, err := s.GetByID(ctx, id)
	if err != nil || loan == nil {
		return nil, err
	}
	parties, err := s.ClientAndEmployeeData(ctx, loan)
	if err != nil {
		return nil, err
	}
	return &LoanDetails{
		Prestamo:    loan,
		LoanParties: parties,
		Dias:        DaysBetween(loan.FechaInicio, loan.FechaFinal),
		Badge:       LoanBadge(loan.Estado),
	}, nil
}
