package mocks

import (
	"context"
	"errors"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
)

// MockStore is a mock implementation of the Store interface
// for testing the service layer.
type MockStore struct {
	ListSupervisorsFunc  func(ctx context.Context) ([]models.Supervisor, error)
	UpsertSupervisorFunc func(ctx context.Context, supervisor models.Supervisor) error
	SaveEvaluationFunc   func(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error)
	GetEvaluationFunc    func(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error)
	ListEvaluationsFunc  func(ctx context.Context) (map[string]models.EvaluationData, error)
}

func (m *MockStore) ListSupervisors(ctx context.Context) ([]models.Supervisor, error) {
	if m.ListSupervisorsFunc != nil {
		return m.ListSupervisorsFunc(ctx)
	}
	return nil, errors.New("ListSupervisorsFunc not implemented")
}

func (m *MockStore) UpsertSupervisor(ctx context.Context, supervisor models.Supervisor) error {
	if m.UpsertSupervisorFunc != nil {
		return m.UpsertSupervisorFunc(ctx, supervisor)
	}
	return errors.New("UpsertSupervisorFunc not implemented")
}

func (m *MockStore) SaveEvaluation(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error) {
	if m.SaveEvaluationFunc != nil {
		return m.SaveEvaluationFunc(ctx, evaluation)
	}
	return models.EvaluationData{}, errors.New("SaveEvaluationFunc not implemented")
}

func (m *MockStore) GetEvaluation(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error) {
	if m.GetEvaluationFunc != nil {
		return m.GetEvaluationFunc(ctx, supervisorID, employeeID)
	}
	return models.EvaluationData{}, false, errors.New("GetEvaluationFunc not implemented")
}

func (m *MockStore) ListEvaluations(ctx context.Context) (map[string]models.EvaluationData, error) {
	if m.ListEvaluationsFunc != nil {
		return m.ListEvaluationsFunc(ctx)
	}
	return nil, errors.New("ListEvaluationsFunc not implemented")
}

// MockReportGenerator is a mock implementation of the ReportGenerator interface.
type MockReportGenerator struct {
	GenerateFunc func(ctx context.Context, evaluation models.EvaluationData) (string, error)
}

func (m *MockReportGenerator) Generate(ctx context.Context, evaluation models.EvaluationData) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, evaluation)
	}
	return "", errors.New("GenerateFunc not implemented")
}
