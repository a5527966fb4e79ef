package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"fiscal-reconstruction-service/cmd/fiscalrecon/config"
	"fiscal-reconstruction-service/internal/fiscal"
	"fiscal-reconstruction-service/internal/reconstructor"
	"fiscal-reconstruction-service/internal/reporter"
	storesqlite "fiscal-reconstruction-service/internal/store/sqlite"
	"fiscal-reconstruction-service/internal/window"
	"fiscal-reconstruction-service/pkg/errors"
	"fiscal-reconstruction-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconstruct command
var (
	dbPath       string
	propertyID   string
	outputFormat string
	outputFile   string
	showProgress bool
)

// reconstructCmd represents the reconstruct command
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Rebuild fiscal summaries and carryforwards from historical data",
	Long: `Reconstruct reprocesses the contracts and financial documents of one
property (or all active properties) over the ten-year historical window,
rebuilding every per-year fiscal summary and the loss carryforward chain.

Reconstruction is idempotent: summaries and carryforwards are fully
overwritten on every run, so it is safe to repeat over unchanged data.
Errors for individual contracts, documents or years are collected into
the result without aborting the run.

Examples:
  # Reconstruct all active properties
  fiscalrecon reconstruct --db fiscal.db

  # Reconstruct one property with progress output
  fiscalrecon reconstruct --db fiscal.db --property 7f9c0c1e --progress

  # Machine-readable result
  fiscalrecon reconstruct --db fiscal.db --output-format json --output-file run.json`,

	PreRunE: validateReconstructFlags,
	RunE:    runReconstruct,
}

func init() {
	rootCmd.AddCommand(reconstructCmd)

	reconstructCmd.Flags().StringVar(&dbPath, "db", "fiscal.db", "path to the SQLite data store")
	reconstructCmd.Flags().StringVarP(&propertyID, "property", "p", "", "reconstruct only this property (default: all active properties)")
	reconstructCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconstructCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconstructCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	viper.BindPFlag("db", reconstructCmd.Flags().Lookup("db"))
	viper.BindPFlag("property", reconstructCmd.Flags().Lookup("property"))
	viper.BindPFlag("output-format", reconstructCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconstructCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("progress", reconstructCmd.Flags().Lookup("progress"))
}

func validateReconstructFlags(cmd *cobra.Command, args []string) error {
	// Viper values win so a config file can override defaults
	dbPath = viper.GetString("db")
	propertyID = viper.GetString("property")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	showProgress = viper.GetBool("progress")

	if dbPath == "" {
		return fmt.Errorf("db path is required")
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	log, err := logger.NewLogger(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	logger.SetGlobalLogger(log)

	// Cancel cleanly between phases on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storesqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to prepare data store: %w", err)
	}

	st := storesqlite.NewStore(db)
	policy := window.NewPolicy(nil)
	engine := reconstructor.NewPropertyReconstructor(
		st,
		fiscal.NewSummaryService(st, policy),
		fiscal.NewCarryForwardService(st),
		policy,
	)

	var onProgress reconstructor.ProgressFunc
	if showProgress {
		onProgress = func(p reconstructor.ProcessingProgress) {
			fmt.Fprintf(os.Stderr, "\r%s", p)
		}
	}

	var result *reconstructor.ProcessingResult
	if propertyID != "" {
		if _, err := st.GetProperty(ctx, propertyID); err != nil {
			return errors.WrapIfNeeded(err, errors.CategoryStorage, errors.CodeEntityNotFound,
				fmt.Sprintf("property %s not found", propertyID))
		}
		result = engine.Reconstruct(ctx, propertyID, onProgress)
	} else {
		batch := reconstructor.NewBatchReconstructor(st, engine)
		result = batch.ReconstructAll(ctx, onProgress)
	}

	if showProgress {
		fmt.Fprintln(os.Stderr)
	}

	reportGenerator, err := reporter.NewReportGenerator(config.CreateReportConfig(outputFormat))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconstruction finished: %s\n", result)
	}

	if !result.Success {
		return errors.New(errors.CategoryReconstruction, errors.CodePhaseFailed,
			fmt.Sprintf("reconstruction finished with %d errors", len(result.Errors))).
			WithSuggestion("Review the error list in the report and correct the underlying data")
	}

	return nil
}
