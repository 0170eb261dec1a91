package service

import (
	"context"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
)

// Store defines the persistence operations the evaluation service needs.
type Store interface {
	ListSupervisors(ctx context.Context) ([]models.Supervisor, error)
	UpsertSupervisor(ctx context.Context, supervisor models.Supervisor) error
	SaveEvaluation(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error)
	GetEvaluation(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error)
	ListEvaluations(ctx context.Context) (map[string]models.EvaluationData, error)
}

// ReportGenerator produces the narrative text for one evaluation.
type ReportGenerator interface {
	Generate(ctx context.Context, evaluation models.EvaluationData) (string, error)
}
