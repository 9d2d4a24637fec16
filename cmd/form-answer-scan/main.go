// Command form-answer-scan lists the state forms of a stage that have no
// answer records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"seds-backend/application/services"
	"seds-backend/infrastructure/config"
	"seds-backend/infrastructure/di"
	"seds-backend/infrastructure/persistence/dynamodb"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const localEndpoint = "http://localhost:8000"

var (
	scanLocal bool
	scanStage string
	scanOut   string
	scanRules string
)

var rootCmd = &cobra.Command{
	Use:   "form-answer-scan",
	Short: "Find state forms without answers",
	Long: "Scan the state forms and form answers tables of a stage and write the " +
		"state forms that have no answers to <stage>-missing.txt and " +
		"<stage>-missing-non-eci.txt.",
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	rootCmd.Flags().BoolVar(&scanLocal, "local", false, "Scan DynamoDB Local at "+localEndpoint)
	rootCmd.Flags().StringVar(&scanStage, "stage", "", "Stage whose tables are scanned (defaults to STAGE, or local with --local)")
	rootCmd.Flags().StringVar(&scanOut, "out", ".", "Directory the reports are written to")
	rootCmd.Flags().StringVar(&scanRules, "rules", "", "Domain rules file (defaults to DOMAIN_CONFIG_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := scanConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := dynamodb.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
	if err != nil {
		return err
	}

	rules, err := config.NewRulesWatcher(cfg.DomainConfigPath, cfg.Environment, false, logger)
	if err != nil {
		return err
	}
	defer rules.Stop()

	scanner := services.NewMissingAnswersScanner(
		dynamodb.NewStateFormRepository(client, cfg.StateFormsTable, logger),
		dynamodb.NewAnswerRepository(client, cfg.AnswersTable, cfg.StateFormIndex, logger),
		rules,
		logger,
	)

	logger.Info("Scanning for state forms without answers",
		zap.String("stage", cfg.Stage),
		zap.String("state_forms_table", cfg.StateFormsTable),
		zap.String("answers_table", cfg.AnswersTable),
	)

	report, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}

	files, err := writeReport(scanOut, cfg.Stage, report)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d state forms, %d without answers (%d non-ECI)\n",
		report.Scanned, len(report.Missing), len(report.MissingNonECI))
	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", f)
	}
	return nil
}

// scanConfig loads the configuration with the flag overrides applied. Table
// names derive from the stage, so the overrides go through the environment.
func scanConfig() (*config.Config, error) {
	stage := scanStage
	if stage == "" && scanLocal {
		stage = "local"
	}
	if stage != "" {
		if err := os.Setenv("STAGE", stage); err != nil {
			return nil, err
		}
	}
	if scanLocal {
		if err := os.Setenv("DYNAMODB_ENDPOINT", localEndpoint); err != nil {
			return nil, err
		}
	}
	if scanRules != "" {
		if err := os.Setenv("DOMAIN_CONFIG_PATH", scanRules); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// writeReport writes both report files into dir and returns their paths.
func writeReport(dir, stage string, report *services.MissingAnswersReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs := []struct {
		name  string
		lines []string
	}{
		{name: stage + "-missing.txt", lines: report.Missing},
		{name: stage + "-missing-non-eci.txt", lines: report.MissingNonECI},
	}

	var written []string
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		body := ""
		if len(o.lines) > 0 {
			body = strings.Join(o.lines, "\n") + "\n"
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
