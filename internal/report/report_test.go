package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleEvaluation() models.EvaluationData {
	return models.EvaluationData{
		ID:             "e1",
		SupervisorID:   "s1",
		EmployeeName:   "Carla Souza",
		Role:           "Porteira",
		ReferenceMonth: "2024-05",
		Evaluator:      "Ana",
		Ratings: map[string]rubric.Rating{
			"Pontualidade": rubric.Otimo,
			"Assiduidade":  rubric.Regular,
		},
		Observations: "Chega cedo.",
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("embeds evaluation fields", func(t *testing.T) {
		prompt, err := BuildPrompt(sampleEvaluation())
		require.NoError(t, err)

		assert.Contains(t, prompt, "Funcionário: Carla Souza")
		assert.Contains(t, prompt, "Cargo: Porteira")
		assert.Contains(t, prompt, "Mês: 2024-05")
		assert.Contains(t, prompt, "Avaliador: Ana")
		assert.Contains(t, prompt, `Avaliações (Critérios): {"Assiduidade":"Regular","Pontualidade":"Ótimo"}`)
		assert.Contains(t, prompt, "Observações: Chega cedo.")
		assert.Contains(t, prompt, "Relatório Avançado: Nenhum")
	})

	t.Run("includes advanced report", func(t *testing.T) {
		ev := sampleEvaluation()
		ev.AdvancedSession = &models.AdvancedSessionData{Report: "Conversa realizada."}
		prompt, err := BuildPrompt(ev)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Relatório Avançado: Conversa realizada.")
	})

	t.Run("no ratings", func(t *testing.T) {
		ev := sampleEvaluation()
		ev.Ratings = nil
		prompt, err := BuildPrompt(ev)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Avaliações (Critérios): {}")
	})
}

type capturedRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"topP"`
	} `json:"generationConfig"`
}

func newFakeGemini(t *testing.T, status int, body string, calls *atomic.Int32, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Contains(t, r.URL.Path, ":generateContent")
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("requires API key", func(t *testing.T) {
		_, err := NewGenerator(ctx, " ")
		assert.Error(t, err)
	})

	t.Run("returns model text and sends sampling config", func(t *testing.T) {
		var calls atomic.Int32
		var captured capturedRequest
		srv := newFakeGemini(t, http.StatusOK,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"# Relatório\n\nTudo **bem**."}]}}]}`,
			&calls, &captured)

		gen, err := NewGenerator(ctx, "test-key", WithBaseURL(srv.URL), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)

		text, err := gen.Generate(ctx, sampleEvaluation())
		require.NoError(t, err)
		assert.Equal(t, "# Relatório\n\nTudo **bem**.", text)
		assert.Equal(t, int32(1), calls.Load())

		require.Len(t, captured.Contents, 1)
		require.Len(t, captured.Contents[0].Parts, 1)
		assert.Contains(t, captured.Contents[0].Parts[0].Text, "Carla Souza")
		assert.InDelta(t, 0.7, captured.GenerationConfig.Temperature, 1e-6)
		assert.InDelta(t, 0.95, captured.GenerationConfig.TopP, 1e-6)
	})

	t.Run("server error maps to unavailable without retry", func(t *testing.T) {
		var calls atomic.Int32
		srv := newFakeGemini(t, http.StatusBadRequest,
			`{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`, &calls, nil)

		gen, err := NewGenerator(ctx, "test-key", WithBaseURL(srv.URL), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, sampleEvaluation())
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("empty candidate text maps to unavailable", func(t *testing.T) {
		var calls atomic.Int32
		srv := newFakeGemini(t, http.StatusOK, `{"candidates":[]}`, &calls, nil)

		gen, err := NewGenerator(ctx, "test-key", WithBaseURL(srv.URL), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, sampleEvaluation())
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		gen, err := NewGenerator(ctx, "test-key",
			WithBaseURL(srv.URL),
			WithTimeout(50*time.Millisecond),
			WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, sampleEvaluation())
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), sampleEvaluation())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "report generation unavailable", err.Error())
}
