package mocks

import (
	"context"
	"errors"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
)

// MockEvaluationService is a mock implementation of the EvaluationService
// interface for testing the handler layer.
type MockEvaluationService struct {
	CatalogFunc          func() *rubric.Catalog
	ListSupervisorsFunc  func(ctx context.Context) ([]models.Supervisor, error)
	CreateSupervisorFunc func(ctx context.Context, name string) (models.Supervisor, error)
	AddEmployeeFunc      func(ctx context.Context, supervisorID, name, role string) (models.Supervisor, models.Employee, error)
	OpenEvaluationFunc   func(ctx context.Context, supervisorID, employeeID string) (service.OpenedEvaluation, error)
	SaveEvaluationFunc   func(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error)
	GenerateReportFunc   func(ctx context.Context, evaluation models.EvaluationData) (service.Report, error)
}

// Catalog returns the default catalog unless overridden.
func (m *MockEvaluationService) Catalog() *rubric.Catalog {
	if m.CatalogFunc != nil {
		return m.CatalogFunc()
	}
	return rubric.Default()
}

func (m *MockEvaluationService) ListSupervisors(ctx context.Context) ([]models.Supervisor, error) {
	if m.ListSupervisorsFunc != nil {
		return m.ListSupervisorsFunc(ctx)
	}
	return nil, errors.New("ListSupervisorsFunc not implemented")
}

func (m *MockEvaluationService) CreateSupervisor(ctx context.Context, name string) (models.Supervisor, error) {
	if m.CreateSupervisorFunc != nil {
		return m.CreateSupervisorFunc(ctx, name)
	}
	return models.Supervisor{}, errors.New("CreateSupervisorFunc not implemented")
}

func (m *MockEvaluationService) AddEmployee(ctx context.Context, supervisorID, name, role string) (models.Supervisor, models.Employee, error) {
	if m.AddEmployeeFunc != nil {
		return m.AddEmployeeFunc(ctx, supervisorID, name, role)
	}
	return models.Supervisor{}, models.Employee{}, errors.New("AddEmployeeFunc not implemented")
}

func (m *MockEvaluationService) OpenEvaluation(ctx context.Context, supervisorID, employeeID string) (service.OpenedEvaluation, error) {
	if m.OpenEvaluationFunc != nil {
		return m.OpenEvaluationFunc(ctx, supervisorID, employeeID)
	}
	return service.OpenedEvaluation{}, errors.New("OpenEvaluationFunc not implemented")
}

func (m *MockEvaluationService) SaveEvaluation(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error) {
	if m.SaveEvaluationFunc != nil {
		return m.SaveEvaluationFunc(ctx, evaluation)
	}
	return models.EvaluationData{}, errors.New("SaveEvaluationFunc not implemented")
}

func (m *MockEvaluationService) GenerateReport(ctx context.Context, evaluation models.EvaluationData) (service.Report, error) {
	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx, evaluation)
	}
	return service.Report{}, errors.New("GenerateReportFunc not implemented")
}
