package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/report"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultGRPCTimeout   = 10 * time.Second
	defaultReportTimeout = 3 * time.Minute
)

var errBadRequest = errors.New("bad request")

type GRPCHandlers struct {
	evaluations   EvaluationService
	logger        *zap.Logger
	reportTimeout time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. A non-positive reportTimeout
// uses the default.
func NewGRPCHandlers(evaluations EvaluationService, logger *zap.Logger, reportTimeout time.Duration) *GRPCHandlers {
	if evaluations == nil {
		panic("nil EvaluationService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reportTimeout <= 0 {
		reportTimeout = defaultReportTimeout
	}
	return &GRPCHandlers{
		evaluations:   evaluations,
		logger:        logger.Named("grpc-handler"),
		reportTimeout: reportTimeout,
	}
}

var _ EvaluationServer = (*GRPCHandlers)(nil)

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, rubric.ErrUnknownRating),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrRoleRequired),
		errors.Is(err, service.ErrEvaluationIdentity),
		errors.Is(err, service.ErrUnknownCriterion),
		errors.Is(err, service.ErrTooManyPhotos),
		errors.Is(err, service.ErrInvalidPhoto):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, service.UserMessage(err))
	case errors.Is(err, service.ErrInsufficientRatings):
		return status.Error(codes.FailedPrecondition, service.UserMessage(err))
	case errors.Is(err, service.ErrGenerationInProgress):
		s.logger.Info("generation busy", zap.String("op", op))
		return status.Error(codes.Aborted, service.UserMessage(err))
	case errors.Is(err, service.ErrSupervisorNotFound),
		errors.Is(err, service.ErrEmployeeNotFound),
		errors.Is(err, service.ErrPhotoNotFound):
		s.logger.Info("not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, report.ErrUnavailable):
		return status.Error(codes.Unavailable, service.UserMessage(err))
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "storage error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GetRubric(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	catalog := s.evaluations.Catalog()

	type ratingView struct {
		Label   string `json:"label"`
		Percent int    `json:"percent"`
		Color   string `json:"color"`
	}
	options := catalog.Options()
	ratings := make([]ratingView, len(options))
	for i, opt := range options {
		ratings[i] = ratingView{Label: opt.Label, Percent: opt.Rating.Percent(), Color: opt.Color}
	}

	return s.respond(ctx, "GetRubric", map[string]any{
		"criteria": catalog.Criteria(),
		"ratings":  ratings,
	})
}

func (s *GRPCHandlers) ListSupervisors(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	supervisors, err := s.evaluations.ListSupervisors(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "ListSupervisors", err)
	}
	return s.respond(ctx, "ListSupervisors", map[string]any{"supervisors": supervisors})
}

func (s *GRPCHandlers) CreateSupervisor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "CreateSupervisor", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	sup, err := s.evaluations.CreateSupervisor(ctx, in.Name)
	if err != nil {
		return nil, s.handleError(ctx, "CreateSupervisor", err)
	}
	return s.respond(ctx, "CreateSupervisor", map[string]any{"supervisor": sup})
}

func (s *GRPCHandlers) AddEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		SupervisorID string `json:"supervisorId"`
		Name         string `json:"name"`
		Role         string `json:"role"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "AddEmployee", err)
	}
	if strings.TrimSpace(in.SupervisorID) == "" {
		return nil, status.Error(codes.InvalidArgument, "supervisorId is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	sup, emp, err := s.evaluations.AddEmployee(ctx, in.SupervisorID, in.Name, in.Role)
	if err != nil {
		return nil, s.handleError(ctx, "AddEmployee", err)
	}
	return s.respond(ctx, "AddEmployee", map[string]any{"supervisor": sup, "employee": emp})
}

func (s *GRPCHandlers) OpenEvaluation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		SupervisorID string `json:"supervisorId"`
		EmployeeID   string `json:"employeeId"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "OpenEvaluation", err)
	}
	if in.SupervisorID == "" || in.EmployeeID == "" {
		return nil, status.Error(codes.InvalidArgument, "supervisorId and employeeId are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	opened, err := s.evaluations.OpenEvaluation(ctx, in.SupervisorID, in.EmployeeID)
	if err != nil {
		return nil, s.handleError(ctx, "OpenEvaluation", err)
	}
	return s.respond(ctx, "OpenEvaluation", map[string]any{
		"evaluation":   opened.Evaluation,
		"showAdvanced": opened.ShowAdvanced,
		"stored":       opened.Stored,
	})
}

type evaluationRequest struct {
	Evaluation *models.EvaluationData `json:"evaluation"`
}

func (s *GRPCHandlers) decodeEvaluation(req *structpb.Struct) (models.EvaluationData, error) {
	var in evaluationRequest
	if err := decode(req, &in); err != nil {
		return models.EvaluationData{}, err
	}
	if in.Evaluation == nil {
		return models.EvaluationData{}, fmt.Errorf("%w: evaluation is required", errBadRequest)
	}
	return *in.Evaluation, nil
}

func (s *GRPCHandlers) SaveEvaluation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ev, err := s.decodeEvaluation(req)
	if err != nil {
		return nil, s.handleError(ctx, "SaveEvaluation", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	saved, err := s.evaluations.SaveEvaluation(ctx, ev)
	if err != nil {
		return nil, s.handleError(ctx, "SaveEvaluation", err)
	}
	return s.respond(ctx, "SaveEvaluation", map[string]any{
		"evaluation":   saved,
		"showAdvanced": service.ShowAdvancedSession(saved.Ratings),
	})
}

func (s *GRPCHandlers) GenerateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ev, err := s.decodeEvaluation(req)
	if err != nil {
		return nil, s.handleError(ctx, "GenerateReport", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.reportTimeout)
	defer cancel()

	rep, err := s.evaluations.GenerateReport(ctx, ev)
	if err != nil {
		return nil, s.handleError(ctx, "GenerateReport", err)
	}
	return s.respond(ctx, "GenerateReport", map[string]any{
		"evaluation": rep.Evaluation,
		"report":     rep.Text,
		"blocks":     rep.Blocks,
	})
}

func (s *GRPCHandlers) RenderNarrative(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decode(req, &in); err != nil {
		return nil, s.handleError(ctx, "RenderNarrative", err)
	}

	blocks := narrative.Render(in.Text)
	if blocks == nil {
		blocks = []narrative.Block{}
	}
	return s.respond(ctx, "RenderNarrative", map[string]any{"blocks": blocks})
}

func (s *GRPCHandlers) respond(ctx context.Context, op string, v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

// decode maps a Struct payload onto dst through its JSON form.
func decode(req *structpb.Struct, dst any) error {
	if req == nil {
		req = &structpb.Struct{}
	}
	data, err := json.Marshal(req.AsMap())
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// encode converts v to a Struct through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
