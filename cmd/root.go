// Package cmd implements the command-line interface for the content
// engine service.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/content-engine/internal/bootstrap"
	"github.com/jonesrussell/content-engine/internal/domain"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "content-engine",
	Short: "News and market data content pipeline",
	Long: `Content engine scrapes news articles and market quotes, deduplicates
and enriches them, and delivers the results to the admin backend.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("content-engine version %s\n", version)
		},
	})
}

// serveCommand starts the HTTP server and scheduler.
func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Start(cmd.Context())
		},
	}
}

// runCommand executes a single pipeline run and prints the summary.
func runCommand() *cobra.Command {
	var (
		pipelineType string
		maxArticles  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, configErr := bootstrap.LoadConfig()
			if configErr != nil {
				return fmt.Errorf("config: %w", configErr)
			}

			log, logErr := bootstrap.CreateLogger(cfg)
			if logErr != nil {
				return fmt.Errorf("logger: %w", logErr)
			}
			defer func() { _ = log.Sync() }()

			app, appErr := bootstrap.NewApp(cmd.Context(), cfg, log)
			if appErr != nil {
				return appErr
			}
			defer func() {
				_ = app.Orchestrator.Close()
				_ = app.Announcer.Close()
			}()

			run, runErr := app.Orchestrator.Run(
				cmd.Context(),
				domain.PipelineType(pipelineType),
				maxArticles,
				domain.TriggerManual,
			)
			if runErr != nil {
				return fmt.Errorf("pipeline: %w", runErr)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if encodeErr := encoder.Encode(run.Summary()); encodeErr != nil {
				return fmt.Errorf("encode summary: %w", encodeErr)
			}

			if run.Status == domain.RunFailed {
				return fmt.Errorf("run %s failed", run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pipelineType, "type", string(domain.PipelineFull),
		"pipeline type: full, news_only, or market_only")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 0,
		"cap on articles per run (0 uses the configured default)")

	return cmd
}
