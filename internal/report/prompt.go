package report

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
)

var promptTemplate = template.Must(template.New("prompt").Parse(`Analise os seguintes dados de avaliação de desempenho e gere um relatório detalhado seguindo a estrutura abaixo.

DADOS:
Funcionário: {{.EmployeeName}}
Cargo: {{.Role}}
Mês: {{.ReferenceMonth}}
Avaliador: {{.Evaluator}}
Avaliações (Critérios): {{.Ratings}}
Observações: {{.Observations}}
Relatório Avançado: {{.AdvancedReport}}

ESTRUTURA DO RELATÓRIO:
1. Resumo Executivo: Desempenho geral, pontos fortes e pontos de atenção.
2. Análise Detalhada por Competência: Explique o que cada nota representa e os impactos operacionais/comportamentais.
3. Plano de Melhoria: Se houver notas "Regular" ou "Ruim", crie ações práticas.
4. Mensagem de Reconhecimento: Se o desempenho for positivo, inclua um elogio formal.
5. Conclusão: Síntese final e expectativas.

IMPORTANTE: Use um tom profissional, imparcial e construtivo. Retorne o conteúdo formatado em Markdown.
`))

type promptData struct {
	EmployeeName   string
	Role           string
	ReferenceMonth string
	Evaluator      string
	Ratings        string
	Observations   string
	AdvancedReport string
}

// BuildPrompt renders the instruction sent to the model for one evaluation.
func BuildPrompt(ev models.EvaluationData) (string, error) {
	ratings := ev.Ratings
	if ratings == nil {
		ratings = map[string]rubric.Rating{}
	}
	encoded, err := json.Marshal(ratings)
	if err != nil {
		return "", err
	}

	advanced := "Nenhum"
	if ev.AdvancedSession != nil && ev.AdvancedSession.Report != "" {
		advanced = ev.AdvancedSession.Report
	}

	var buf bytes.Buffer
	err = promptTemplate.Execute(&buf, promptData{
		EmployeeName:   ev.EmployeeName,
		Role:           ev.Role,
		ReferenceMonth: ev.ReferenceMonth,
		Evaluator:      ev.Evaluator,
		Ratings:        string(encoded),
		Observations:   ev.Observations,
		AdvancedReport: advanced,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
