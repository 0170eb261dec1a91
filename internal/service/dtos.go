package service

import (
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
)

// OpenedEvaluation is an evaluation as loaded into the form, with the
// advanced-session visibility already computed.
type OpenedEvaluation struct {
	Evaluation   models.EvaluationData
	ShowAdvanced bool
	// Stored is false when no record existed and defaults were applied.
	Stored bool
}

// Report is the outcome of a successful generation.
type Report struct {
	Evaluation models.EvaluationData
	Text       string
	Blocks     []narrative.Block
}
