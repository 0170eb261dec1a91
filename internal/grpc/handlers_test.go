package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/grpc/mocks"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/report"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestNewGRPCHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{}
		handlers := NewGRPCHandlers(svc, zap.NewNop(), time.Minute)

		assert.Equal(t, svc, handlers.evaluations)
		assert.Equal(t, time.Minute, handlers.reportTimeout)
		assert.NotNil(t, handlers.logger)
	})

	t.Run("nil service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGRPCHandlers(nil, zap.NewNop(), time.Minute)
		})
	})

	t.Run("non-positive timeout uses default", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockEvaluationService{}, nil, 0)
		assert.Equal(t, defaultReportTimeout, handlers.reportTimeout)
	})
}

func TestGetRubric(t *testing.T) {
	handlers := NewGRPCHandlers(&mocks.MockEvaluationService{}, zap.NewNop(), 0)

	resp, err := handlers.GetRubric(context.Background(), &structpb.Struct{})
	require.NoError(t, err)

	m := resp.AsMap()
	criteria := m["criteria"].([]any)
	assert.Len(t, criteria, 13)
	ratings := m["ratings"].([]any)
	require.Len(t, ratings, 4)
	first := ratings[0].(map[string]any)
	assert.Equal(t, "Ótimo", first["label"])
	assert.Equal(t, float64(100), first["percent"])
}

func TestSupervisorHandlers(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			ListSupervisorsFunc: func(context.Context) ([]models.Supervisor, error) {
				return []models.Supervisor{{ID: "s1", Name: "Ana", Employees: []models.Employee{}}}, nil
			},
		}
		resp, err := NewGRPCHandlers(svc, zap.NewNop(), 0).ListSupervisors(ctx, &structpb.Struct{})
		require.NoError(t, err)
		sups := resp.AsMap()["supervisors"].([]any)
		require.Len(t, sups, 1)
		assert.Equal(t, "Ana", sups[0].(map[string]any)["name"])
	})

	t.Run("create passes name", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			CreateSupervisorFunc: func(_ context.Context, name string) (models.Supervisor, error) {
				assert.Equal(t, "Ana", name)
				return models.Supervisor{ID: "s1", Name: name, Employees: []models.Employee{}}, nil
			},
		}
		resp, err := NewGRPCHandlers(svc, zap.NewNop(), 0).CreateSupervisor(ctx, mustStruct(t, map[string]any{"name": "Ana"}))
		require.NoError(t, err)
		sup := resp.AsMap()["supervisor"].(map[string]any)
		assert.Equal(t, "s1", sup["id"])
	})

	t.Run("create blank name is invalid argument", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			CreateSupervisorFunc: func(context.Context, string) (models.Supervisor, error) {
				return models.Supervisor{}, service.ErrNameRequired
			},
		}
		_, err := NewGRPCHandlers(svc, zap.NewNop(), 0).CreateSupervisor(ctx, &structpb.Struct{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("add employee requires supervisor id", func(t *testing.T) {
		_, err := NewGRPCHandlers(&mocks.MockEvaluationService{}, zap.NewNop(), 0).
			AddEmployee(ctx, mustStruct(t, map[string]any{"name": "Carla"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("add employee unknown supervisor", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			AddEmployeeFunc: func(context.Context, string, string, string) (models.Supervisor, models.Employee, error) {
				return models.Supervisor{}, models.Employee{}, service.ErrSupervisorNotFound
			},
		}
		_, err := NewGRPCHandlers(svc, zap.NewNop(), 0).
			AddEmployee(ctx, mustStruct(t, map[string]any{"supervisorId": "x", "name": "Carla"}))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestEvaluationHandlers(t *testing.T) {
	ctx := context.Background()
	evalPayload := map[string]any{
		"evaluation": map[string]any{
			"id":             "e1",
			"supervisorId":   "s1",
			"employeeName":   "Carla",
			"role":           "Porteira",
			"referenceMonth": "2024-05",
			"ratings":        map[string]any{"Pontualidade": "Ruim"},
			"lastUpdated":    float64(1716200000000),
		},
	}

	t.Run("open", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			OpenEvaluationFunc: func(_ context.Context, sup, emp string) (service.OpenedEvaluation, error) {
				return service.OpenedEvaluation{
					Evaluation:   models.EvaluationData{ID: emp, SupervisorID: sup, Ratings: map[string]rubric.Rating{}},
					ShowAdvanced: false,
				}, nil
			},
		}
		resp, err := NewGRPCHandlers(svc, zap.NewNop(), 0).
			OpenEvaluation(ctx, mustStruct(t, map[string]any{"supervisorId": "s1", "employeeId": "e1"}))
		require.NoError(t, err)
		m := resp.AsMap()
		assert.Equal(t, false, m["showAdvanced"])
		assert.Equal(t, "e1", m["evaluation"].(map[string]any)["id"])
	})

	t.Run("open requires ids", func(t *testing.T) {
		_, err := NewGRPCHandlers(&mocks.MockEvaluationService{}, zap.NewNop(), 0).
			OpenEvaluation(ctx, mustStruct(t, map[string]any{"supervisorId": "s1"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("save decodes ratings and keeps large timestamps", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			SaveEvaluationFunc: func(_ context.Context, ev models.EvaluationData) (models.EvaluationData, error) {
				assert.Equal(t, rubric.Ruim, ev.Ratings["Pontualidade"])
				assert.Equal(t, int64(1716200000000), ev.LastUpdated)
				return ev, nil
			},
		}
		resp, err := NewGRPCHandlers(svc, zap.NewNop(), 0).SaveEvaluation(ctx, mustStruct(t, evalPayload))
		require.NoError(t, err)
		assert.Equal(t, true, resp.AsMap()["showAdvanced"])
	})

	t.Run("save with unknown rating label", func(t *testing.T) {
		bad := mustStruct(t, map[string]any{
			"evaluation": map[string]any{"id": "e1", "supervisorId": "s1", "ratings": map[string]any{"X": "Excelente"}},
		})
		_, err := NewGRPCHandlers(&mocks.MockEvaluationService{}, zap.NewNop(), 0).SaveEvaluation(ctx, bad)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("save missing evaluation", func(t *testing.T) {
		_, err := NewGRPCHandlers(&mocks.MockEvaluationService{}, zap.NewNop(), 0).SaveEvaluation(ctx, &structpb.Struct{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("save role required message is surfaced", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			SaveEvaluationFunc: func(context.Context, models.EvaluationData) (models.EvaluationData, error) {
				return models.EvaluationData{}, service.ErrRoleRequired
			},
		}
		_, err := NewGRPCHandlers(svc, zap.NewNop(), 0).SaveEvaluation(ctx, mustStruct(t, evalPayload))
		st, _ := status.FromError(err)
		assert.Equal(t, codes.InvalidArgument, st.Code())
		assert.Equal(t, "Por favor, preencha o Cargo.", st.Message())
	})

	t.Run("generate", func(t *testing.T) {
		svc := &mocks.MockEvaluationService{
			GenerateReportFunc: func(_ context.Context, ev models.EvaluationData) (service.Report, error) {
				return service.Report{Evaluation: ev, Text: "# A", Blocks: narrative.Render("# A")}, nil
			},
		}
		resp, err := NewGRPCHandlers(svc, zap.NewNop(), 0).GenerateReport(ctx, mustStruct(t, evalPayload))
		require.NoError(t, err)
		m := resp.AsMap()
		assert.Equal(t, "# A", m["report"])
		blocks := m["blocks"].([]any)
		require.Len(t, blocks, 1)
		assert.Equal(t, "heading1", blocks[0].(map[string]any)["kind"])
	})

	t.Run("generate error mapping", func(t *testing.T) {
		cases := []struct {
			err  error
			code codes.Code
			msg  string
		}{
			{service.ErrInsufficientRatings, codes.FailedPrecondition, "Avalie pelo menos 3 critérios antes de gerar o relatório."},
			{report.ErrUnavailable, codes.Unavailable, "Não foi possível gerar o relatório no momento."},
			{service.ErrGenerationInProgress, codes.Aborted, "O relatório desta avaliação já está sendo gerado."},
			{service.ErrStorageFailure, codes.Internal, "storage error"},
			{errors.New("boom"), codes.Internal, "GenerateReport failed: boom"},
		}
		for _, tc := range cases {
			svc := &mocks.MockEvaluationService{
				GenerateReportFunc: func(context.Context, models.EvaluationData) (service.Report, error) {
					return service.Report{}, tc.err
				},
			}
			_, err := NewGRPCHandlers(svc, zap.NewNop(), 0).GenerateReport(ctx, mustStruct(t, evalPayload))
			st, _ := status.FromError(err)
			assert.Equal(t, tc.code, st.Code(), tc.err.Error())
			assert.Equal(t, tc.msg, st.Message())
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		svc := &mocks.MockEvaluationService{
			GenerateReportFunc: func(context.Context, models.EvaluationData) (service.Report, error) {
				cancel()
				return service.Report{}, context.Canceled
			},
		}
		_, err := NewGRPCHandlers(svc, zap.NewNop(), 0).GenerateReport(cctx, mustStruct(t, evalPayload))
		assert.Equal(t, codes.Canceled, status.Code(err))
	})
}

func TestRenderNarrative(t *testing.T) {
	handlers := NewGRPCHandlers(&mocks.MockEvaluationService{}, zap.NewNop(), 0)

	resp, err := handlers.RenderNarrative(context.Background(), mustStruct(t, map[string]any{
		"text": "# Title\n\nSome **bold** text",
	}))
	require.NoError(t, err)
	blocks := resp.AsMap()["blocks"].([]any)
	require.Len(t, blocks, 3)
	runs := blocks[2].(map[string]any)["runs"].([]any)
	require.Len(t, runs, 3)
	assert.Equal(t, true, runs[1].(map[string]any)["bold"])

	resp, err = handlers.RenderNarrative(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Empty(t, resp.AsMap()["blocks"])
}

func TestServiceOverBufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	svc := &mocks.MockEvaluationService{
		ListSupervisorsFunc: func(context.Context) ([]models.Supervisor, error) {
			return []models.Supervisor{{ID: "s1", Name: "Ana", Employees: []models.Employee{}}}, nil
		},
	}
	RegisterEvaluationServer(srv, NewGRPCHandlers(svc, zaptest.NewLogger(t), 0))
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := NewEvaluationClient(conn)
	resp, err := client.Call(ctx, "ListSupervisors", nil)
	require.NoError(t, err)
	assert.Len(t, resp.AsMap()["supervisors"], 1)

	_, err = client.Call(ctx, "OpenEvaluation", mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Call(ctx, "Nope", nil)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
