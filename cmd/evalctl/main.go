package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/app"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/config"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"
)

// cli carries the state shared by every subcommand.
type cli struct {
	verbose bool
	envFile string
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "evalctl",
		Short: "Operate the monthly performance evaluation store",
		Long: `evalctl works directly on the local evaluation store configured by the
same environment variables as the server (STORE_BACKEND, DB_PATH, REDIS_ADDR,
GENAI_API_KEY, RUBRIC_PATH).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.envFile != "" {
				_ = godotenv.Load(c.envFile)
			}
			c.cfg = config.LoadFromEnv()
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if c.verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			c.logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Optional dotenv file")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 3*time.Minute, "Operation timeout")

	root.AddCommand(c.supervisorsCmd())
	root.AddCommand(c.employeesCmd())
	root.AddCommand(c.evaluationCmd())
	root.AddCommand(c.reportCmd())
	root.AddCommand(c.rubricCmd())
	return root
}

// withService opens the configured backend for the duration of fn.
func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.EvaluationService) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()

	services, err := app.NewServices(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			c.logger.Warn("backend close failed", zap.Error(err))
		}
	}()
	return fn(ctx, services.Evaluations)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", service.UserMessage(err))
		os.Exit(1)
	}
}
