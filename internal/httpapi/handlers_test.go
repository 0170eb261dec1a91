package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/httpapi/mocks"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func storedEvaluation() models.EvaluationData {
	return models.EvaluationData{
		ID:             "e1",
		SupervisorID:   "s1",
		EmployeeName:   "Carla Souza",
		Role:           "Porteira",
		ReferenceMonth: "2024-05",
		Ratings:        map[string]rubric.Rating{"Pontualidade": rubric.Bom},
		LastUpdated:    1716200000000,
	}
}

func newTestRouter(t *testing.T, evals *mocks.MockEvaluations) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	h := NewHandler(evals, logger)
	h.now = func() time.Time { return time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC) }
	return NewRouter(h, logger)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestNewHandlerPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewHandler(nil, nil) })
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &mocks.MockEvaluations{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, &mocks.MockEvaluations{})

	req := httptest.NewRequest(http.MethodGet, "/v1/rubric", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "req-42", env.RequestID)

	data := env.Data.(map[string]any)
	assert.Len(t, data["criteria"], 13)
	assert.Len(t, data["ratings"], 4)
}

func TestGetEvaluation(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{
			StoredEvaluationFunc: func(_ context.Context, sup, emp string) (models.EvaluationData, bool, error) {
				assert.Equal(t, "s1", sup)
				assert.Equal(t, "e1", emp)
				return storedEvaluation(), true, nil
			},
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/evaluations/s1/e1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		data := env.Data.(map[string]any)
		assert.Equal(t, false, data["showAdvanced"])
		assert.Equal(t, "Bom", data["evaluation"].(map[string]any)["ratings"].(map[string]any)["Pontualidade"])
	})

	t.Run("missing", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/evaluations/s1/e1", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "not_found", env.Error.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{
			StoredEvaluationFunc: func(context.Context, string, string) (models.EvaluationData, bool, error) {
				return models.EvaluationData{}, false, errors.New("disk gone")
			},
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/evaluations/s1/e1", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "storage_error", decodeEnvelope(t, rec).Error.Code)
	})
}

func TestPrintReport(t *testing.T) {
	body := func(v any) *bytes.Reader {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return bytes.NewReader(data)
	}

	t.Run("renders pdf", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{
			StoredEvaluationFunc: func(context.Context, string, string) (models.EvaluationData, bool, error) {
				return storedEvaluation(), true, nil
			},
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/reports/print", body(map[string]string{
			"supervisorId": "s1",
			"employeeId":   "e1",
			"report":       "# Parecer\n\nColaboradora **exemplar**.",
		}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	})

	t.Run("unknown evaluation", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{})
		req := httptest.NewRequest(http.MethodPost, "/v1/reports/print", body(map[string]string{
			"supervisorId": "s1", "employeeId": "missing",
		}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing ids", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{})
		req := httptest.NewRequest(http.MethodPost, "/v1/reports/print", body(map[string]string{"report": "x"}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(t, &mocks.MockEvaluations{})
		req := httptest.NewRequest(http.MethodPost, "/v1/reports/print", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_body", decodeEnvelope(t, rec).Error.Code)
	})
}

func TestRecovererReturnsEnvelope(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := RequestID(Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal", env.Error.Code)
	assert.NotEmpty(t, env.RequestID)
}

func TestServerLifecycle(t *testing.T) {
	logger := zaptest.NewLogger(t)
	srv, err := NewServer("127.0.0.1:0", NewRouter(NewHandler(&mocks.MockEvaluations{}, logger), logger), logger)
	require.NoError(t, err)
	srv.Start()

	resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
