package mocks

import (
	"context"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
)

type MockEvaluations struct {
	StoredEvaluationFunc func(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error)
}

func (m *MockEvaluations) Catalog() *rubric.Catalog {
	return rubric.Default()
}

func (m *MockEvaluations) StoredEvaluation(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error) {
	if m.StoredEvaluationFunc != nil {
		return m.StoredEvaluationFunc(ctx, supervisorID, employeeID)
	}
	return models.EvaluationData{}, false, nil
}
