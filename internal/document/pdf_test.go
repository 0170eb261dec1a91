package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	ev := models.EvaluationData{
		ID:             "abc-123",
		SupervisorID:   "s1",
		EmployeeName:   "João Conceição",
		Role:           "Zelador",
		ReferenceMonth: "2024-05",
		Evaluator:      "Ana",
		Ratings: map[string]rubric.Rating{
			"Pontualidade":         rubric.Otimo,
			"Conhecimento Técnico": rubric.Ruim,
			"Critério Antigo":      rubric.Bom,
		},
		Observations:       "Precisa de acompanhamento.",
		EmployeeSignature:  "João C.",
		EvaluatorSignature: "Ana",
	}

	t.Run("full document", func(t *testing.T) {
		var buf bytes.Buffer
		err := Write(&buf, Input{
			Evaluation: ev,
			Blocks:     narrative.Render("# Relatório\n\nTexto com **destaque**.\n- ação um\n## Conclusão"),
			Catalog:    rubric.Default(),
			PrintedAt:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
		assert.Greater(t, buf.Len(), 1000)
	})

	t.Run("minimal input", func(t *testing.T) {
		var buf bytes.Buffer
		err := Write(&buf, Input{Evaluation: models.EvaluationData{ID: "x"}})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
	})

	t.Run("long narrative spans pages", func(t *testing.T) {
		text := strings.Repeat("Parágrafo longo com **negrito** e texto corrido para preencher a página.\n\n", 120)
		var buf bytes.Buffer
		err := Write(&buf, Input{Evaluation: ev, Blocks: narrative.Render(text)})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "/Count ")
	})
}

func TestHexRGB(t *testing.T) {
	fallback := [3]int{1, 2, 3}
	assert.Equal(t, [3]int{22, 163, 74}, hexRGB("#16a34a", fallback))
	assert.Equal(t, fallback, hexRGB("#fff", fallback))
	assert.Equal(t, fallback, hexRGB("#zzzzzz", fallback))
}
