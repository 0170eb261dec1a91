package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/app"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"github.com/spf13/cobra"
)

func (c *cli) supervisorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supervisors",
		Short: "List or add supervisors",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List supervisors and their roster size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				sups, err := svc.ListSupervisors(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sups) == 0 {
					fmt.Fprintln(out, labelStyle.Render("no supervisors"))
					return nil
				}
				for _, s := range sups {
					fmt.Fprintf(out, "%s  %s %s\n", s.ID, boldStyle.Render(s.Name),
						labelStyle.Render(fmt.Sprintf("(%d employees)", len(s.Employees))))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create a supervisor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				sup, err := svc.CreateSupervisor(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("created"), sup.ID)
				return nil
			})
		},
	})
	return cmd
}

func (c *cli) employeesCmd() *cobra.Command {
	var supervisorID, role string

	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List or add employees of a supervisor",
	}
	cmd.PersistentFlags().StringVar(&supervisorID, "supervisor", "", "Supervisor id (required)")
	_ = cmd.MarkPersistentFlagRequired("supervisor")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				sup, err := svc.GetSupervisor(ctx, supervisorID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, titleStyle.Render(sup.Name))
				for _, e := range sup.Employees {
					line := fmt.Sprintf("%s  %s", e.ID, e.Name)
					if e.Role != "" {
						line += " " + labelStyle.Render("· "+e.Role)
					}
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	})

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an employee to the roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.EvaluationService) error {
				_, emp, err := svc.AddEmployee(ctx, supervisorID, strings.Join(args, " "), role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("added"), emp.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&role, "role", "", "Job title")
	cmd.AddCommand(add)
	return cmd
}

func (c *cli) rubricCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rubric",
		Short: "Print the criteria and the rating scale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := app.LoadCatalog(c.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Critérios"))
			for i, crit := range catalog.Criteria() {
				fmt.Fprintf(out, "%2d. %s\n", i+1, crit)
			}
			fmt.Fprintln(out, titleStyle.Render("Escala"))
			for _, opt := range catalog.Options() {
				fmt.Fprintf(out, "  %s %s\n", ratingStyle(catalog, opt.Rating).Render(opt.Label),
					labelStyle.Render(fmt.Sprintf("%d%%", opt.Rating.Percent())))
			}
			return nil
		},
	}
}
