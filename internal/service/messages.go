package service

import (
	"errors"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/report"
)

var userMessages = []struct {
	err error
	msg string
}{
	{ErrRoleRequired, "Por favor, preencha o Cargo."},
	{ErrInsufficientRatings, "Avalie pelo menos 3 critérios antes de gerar o relatório."},
	{report.ErrUnavailable, "Não foi possível gerar o relatório no momento."},
	{ErrGenerationInProgress, "O relatório desta avaliação já está sendo gerado."},
}

// UserMessage returns the Portuguese text shown to the operator for err, or
// err.Error() when there is none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}
