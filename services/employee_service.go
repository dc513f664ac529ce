package services

import (
	"context"

	"prestamos/database"
	"prestamos/models"
)

// EmployeeService manages EMPLEADOS
type EmployeeService struct {
	*Repository[models.Employee, *models.Employee]
}

func NewEmployeeService(db database.Store, notifier Notifier) *EmployeeService {
	return &EmployeeService{Repository: NewRepository[models.Employee](db, models.CollectionEmployees, notifier)}
}

// Options returns one picker option per employee
func (s *EmployeeService) Options(ctx context.Context) ([]models.Option, error) {
	employees, err := s.GetAll(ctx)
	if err != nil {
		return []models.Option{}, err
	}
	return options(employees), nil
}
