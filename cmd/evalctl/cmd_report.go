package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/document"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"github.com/spf13/cobra"
)

func (c *cli) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate or render evaluation reports",
	}

	var pair pairFlags
	var pdfPath string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate the narrative report for a saved evaluation",
		Long: `Sends the evaluation to the generative model, stores the returned text
in the advanced session and prints it. With --pdf the printable document is
also written to the given file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				form, _, err := svc.NewForm(ctx, pair.supervisorID, pair.employeeID)
				if err != nil {
					return err
				}
				rep, err := svc.GenerateReport(ctx, form.Data())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderBlocks(rep.Blocks))

				if pdfPath == "" {
					return nil
				}
				if err := writePDF(pdfPath, document.Input{
					Evaluation: rep.Evaluation,
					Blocks:     rep.Blocks,
					Catalog:    svc.Catalog(),
					PrintedAt:  time.Now(),
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("written"), pdfPath)
				return nil
			})
		},
	}
	pair.bind(generate)
	generate.Flags().StringVar(&pdfPath, "pdf", "", "Also write the printable PDF to this file")

	render := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a Markdown-like report file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBlocks(narrative.Render(string(raw))))
			return nil
		},
	}

	cmd.AddCommand(generate, render)
	return cmd
}

func writePDF(path string, in document.Input) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := document.Write(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
