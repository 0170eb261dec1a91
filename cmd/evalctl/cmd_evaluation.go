package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"github.com/spf13/cobra"
)

type pairFlags struct {
	supervisorID string
	employeeID   string
}

func (p *pairFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.supervisorID, "supervisor", "", "Supervisor id (required)")
	cmd.Flags().StringVar(&p.employeeID, "employee", "", "Employee id (required)")
	_ = cmd.MarkFlagRequired("supervisor")
	_ = cmd.MarkFlagRequired("employee")
}

type editFlags struct {
	role, month, evaluator, observations string
	rates                                []string
	report, link, date                   string
	photos                               []string
	removePhotos                         []int
	employeeSignature                    string
	evaluatorSignature                   string
}

func (c *cli) evaluationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluation",
		Short: "Show or edit the evaluation of one employee",
	}

	var showPair pairFlags
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the evaluation form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				opened, err := svc.OpenEvaluation(ctx, showPair.supervisorID, showPair.employeeID)
				if err != nil {
					return err
				}
				printEvaluation(cmd.OutOrStdout(), svc.Catalog(), opened)
				return nil
			})
		},
	}
	showPair.bind(show)

	var editPair pairFlags
	var ef editFlags
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Change fields of the evaluation and save it",
		Long: `Loads the evaluation (or a fresh form), applies every given flag in order
and saves it. Ratings are given as --rate "Criterion=Label"; an empty label
clears the criterion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				form, _, err := svc.NewForm(ctx, editPair.supervisorID, editPair.employeeID)
				if err != nil {
					return err
				}
				if err := applyEdits(cmd, form, ef); err != nil {
					return err
				}
				saved, err := svc.SaveEvaluation(ctx, form.Data())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("saved"), saved.Key())
				return nil
			})
		},
	}
	editPair.bind(edit)
	f := edit.Flags()
	f.StringVar(&ef.role, "role", "", "Job title")
	f.StringVar(&ef.month, "month", "", "Reference month (YYYY-MM)")
	f.StringVar(&ef.evaluator, "evaluator", "", "Evaluator name")
	f.StringVar(&ef.observations, "observations", "", "Free-text observations")
	f.StringArrayVar(&ef.rates, "rate", nil, `Rating as "Criterion=Label" (repeatable)`)
	f.StringVar(&ef.report, "report", "", "Advanced session report")
	f.StringVar(&ef.link, "link", "", "Advanced session link")
	f.StringVar(&ef.date, "date", "", "Advanced session date")
	f.StringArrayVar(&ef.photos, "photo", nil, "Image file to attach (repeatable)")
	f.IntSliceVar(&ef.removePhotos, "remove-photo", nil, "Photo index to remove (repeatable)")
	f.StringVar(&ef.employeeSignature, "employee-signature", "", "Employee signature")
	f.StringVar(&ef.evaluatorSignature, "evaluator-signature", "", "Evaluator signature")

	cmd.AddCommand(show, edit)
	return cmd
}

func applyEdits(cmd *cobra.Command, form *service.Form, ef editFlags) error {
	changed := cmd.Flags().Changed
	data := form.Data()

	if changed("role") {
		form.SetRole(ef.role)
	}
	if changed("month") {
		form.SetReferenceMonth(ef.month)
	}
	if changed("evaluator") {
		form.SetEvaluator(ef.evaluator)
	}
	if changed("observations") {
		form.SetObservations(ef.observations)
	}
	for _, rate := range ef.rates {
		criterion, label, ok := strings.Cut(rate, "=")
		if !ok {
			return fmt.Errorf("invalid --rate %q, want Criterion=Label", rate)
		}
		criterion = strings.TrimSpace(criterion)
		label = strings.TrimSpace(label)
		if label == "" {
			form.ClearRating(criterion)
			continue
		}
		r, err := rubric.ParseRating(label)
		if err != nil {
			return err
		}
		if err := form.SetRating(criterion, r); err != nil {
			return err
		}
	}
	if changed("report") {
		form.SetAdvancedReport(ef.report)
	}
	if changed("link") {
		form.SetAdvancedLink(ef.link)
	}
	if changed("date") {
		form.SetAdvancedDate(ef.date)
	}

	// Highest index first.
	remove := append([]int(nil), ef.removePhotos...)
	sort.Sort(sort.Reverse(sort.IntSlice(remove)))
	for _, i := range remove {
		if err := form.RemovePhoto(i); err != nil {
			return err
		}
	}
	if len(ef.photos) > 0 {
		uris := make([]string, 0, len(ef.photos))
		for _, path := range ef.photos {
			uri, err := photoDataURI(path)
			if err != nil {
				return err
			}
			uris = append(uris, uri)
		}
		added, err := form.AddPhotos(uris...)
		if err != nil {
			return err
		}
		if added < len(uris) {
			fmt.Fprintf(cmd.ErrOrStderr(), "only %d of %d photos attached (limit %d)\n", added, len(uris), service.MaxPhotos)
		}
	}

	if changed("employee-signature") || changed("evaluator-signature") {
		emp, eval := data.EmployeeSignature, data.EvaluatorSignature
		if changed("employee-signature") {
			emp = ef.employeeSignature
		}
		if changed("evaluator-signature") {
			eval = ef.evaluatorSignature
		}
		form.SetSignatures(emp, eval)
	}
	return nil
}

// photoDataURI reads an image file into a data: URI.
func photoDataURI(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s: %w", path, service.ErrInvalidPhoto)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func printEvaluation(out io.Writer, catalog *rubric.Catalog, opened service.OpenedEvaluation) {
	ev := opened.Evaluation
	fmt.Fprintln(out, titleStyle.Render(ev.EmployeeName))
	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render(label+":"), value)
	}
	field("Cargo", ev.Role)
	field("Mês de referência", ev.ReferenceMonth)
	field("Avaliador", ev.Evaluator)
	if !opened.Stored {
		fmt.Fprintln(out, labelStyle.Render("(não salvo)"))
	}

	fmt.Fprintln(out)
	for _, crit := range catalog.Criteria() {
		r, ok := ev.Ratings[crit]
		label := labelStyle.Render("-")
		if ok {
			label = ratingStyle(catalog, r).Render(r.String())
		}
		fmt.Fprintf(out, "  %-60s %s\n", crit, label)
	}

	if ev.Observations != "" {
		fmt.Fprintln(out)
		field("Observações", ev.Observations)
	}
	if opened.ShowAdvanced {
		printAdvanced(out, ev.AdvancedSession)
	}
}

func printAdvanced(out io.Writer, adv *models.AdvancedSessionData) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, h2Style.Render("Sessão avançada"))
	if adv == nil {
		fmt.Fprintln(out, labelStyle.Render("vazia"))
		return
	}
	if adv.Report != "" {
		fmt.Fprintln(out, adv.Report)
	}
	if adv.Link != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Link:"), adv.Link)
	}
	if adv.Date != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Data:"), adv.Date)
	}
	fmt.Fprintf(out, "%s %d/%d\n", labelStyle.Render("Fotos:"), len(adv.Photos), service.MaxPhotos)
}
