package grpc

import (
	"context"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
)

type EvaluationService interface {
	Catalog() *rubric.Catalog
	ListSupervisors(ctx context.Context) ([]models.Supervisor, error)
	CreateSupervisor(ctx context.Context, name string) (models.Supervisor, error)
	AddEmployee(ctx context.Context, supervisorID, name, role string) (models.Supervisor, models.Employee, error)
	OpenEvaluation(ctx context.Context, supervisorID, employeeID string) (service.OpenedEvaluation, error)
	SaveEvaluation(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error)
	GenerateReport(ctx context.Context, evaluation models.EvaluationData) (service.Report, error)
}
