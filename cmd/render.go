// =============================================================================
// Receipt Generator - Render Command
// =============================================================================
//
// This file defines the 'render' command, which turns input transactions
// into PDF receipts.
//
// COMMAND USAGE:
//   receipt-generator render [flags]
//
// FLAGS:
//   --file     : Render a single input file instead of the input directory
//   --sample   : Render the built-in sample transaction
//   --dry-run  : Lay receipts out without writing, archiving or recording
//
// PROCESSING PIPELINE:
//   1. Discover inputs (or take --file / --sample)
//   2. Process inputs concurrently, max_concurrency at a time:
//      load, validate, render, record history, archive
//   3. Print one line per receipt and a summary table
//   4. Write the error log and run summary to the logs directory
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/receipt-generator/internal/converter"
	"github.com/ginjaninja78/receipt-generator/internal/history"
	"github.com/ginjaninja78/receipt-generator/internal/records"
	"github.com/ginjaninja78/receipt-generator/internal/renderer"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/validation"
	"github.com/ginjaninja78/receipt-generator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun     bool
	renderFile string
	renderDemo bool
)

// =============================================================================
// RENDER COMMAND DEFINITION
// =============================================================================

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render transactions as PDF receipts",
	Long: `The render command reads every YAML, CSV and XLSX file in the input
directory and renders one PDF receipt per transaction into the output
directory.

Files are processed concurrently. A failure in one file does not affect
the others.

On success:
  - Each receipt is written to the output directory
  - The input file is moved to the input archive
  - Each receipt is recorded in the render history

On error:
  - An error log is written to the logs directory
  - The input file stays in the input directory

Fonts:
  The built-in PDF fonts have no rupee sign, so by default "₹" is printed as
  "Rs." (e.g. "Total: Rs.3660.00"). Set pdf.regular_font and pdf.bold_font to
  TTF files that contain the glyph to print "₹" itself, or change
  pdf.glyph_fallbacks.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runRender(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Lay receipts out without writing any file")
	renderCmd.Flags().StringVar(&renderFile, "file", "", "Render a single input file")
	renderCmd.Flags().BoolVar(&renderDemo, "sample", false, "Render the built-in sample transaction")
	renderCmd.MarkFlagsMutuallyExclusive("file", "sample")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runRender(ctx context.Context, cmd *cobra.Command) error {
	startTime := time.Now()
	runID := utils.NewRunID()
	runLog := log.With(zap.String("run_id", runID))
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: SHARED DEPENDENCIES
	// =========================================================================

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.LogsDir)
	files.ArchiveOnSuccess = mainConfig.Processing.ArchiveInputs
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	deps := converter.Dependencies{
		Config:   mainConfig,
		Renderer: renderer.New(mainConfig.RendererOptions(), log),
		Validator: validation.NewValidator(validation.Options{
			StrictTotals: mainConfig.Processing.StrictTotals,
		}),
		Files:  files,
		Logger: log,
		RunID:  runID,
		DryRun: dryRun,
	}

	if mainConfig.History.Enabled && !dryRun {
		store, err := history.Open(ctx, mainConfig.History.Path)
		if err != nil {
			// Receipts do not depend on history; carry on without it.
			runLog.Warn("render history unavailable", zap.Error(err))
		} else {
			defer store.Close()
			deps.History = store
		}
	}

	// =========================================================================
	// STEP 2: COLLECT INPUTS
	// =========================================================================

	jobs, err := collectJobs(deps, files)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No input files found in the input directory.")
		return nil
	}

	runLog.Info("render run started", zap.Int("inputs", len(jobs)), zap.Bool("dry_run", dryRun))

	// =========================================================================
	// STEP 3: PROCESS INPUTS CONCURRENTLY
	// =========================================================================

	results := processJobs(ctx, jobs, mainConfig.Processing.MaxConcurrency)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(jobs),
	}
	var errorEntries []utils.ErrorLogEntry
	now := time.Now()

	for _, result := range results {
		printResult(cmd, result)

		summary.TotalRecords += result.Stats.RecordsLoaded
		summary.Rendered += result.Stats.Rendered
		summary.Warnings += result.Stats.Warnings

		if result.Success {
			summary.SuccessfulFiles++
			info := utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				ArchivePath: result.ArchivePath,
				Warnings:    result.Stats.Warnings,
				ProcessTime: result.Stats.ProcessingTime,
			}
			for _, r := range result.Receipts {
				info.Receipts = append(info.Receipts, r.Name())
			}
			summary.ProcessedFiles = append(summary.ProcessedFiles, info)
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorType:    result.ErrorType,
			ErrorMessage: result.Error.Error(),
		})
		errorEntries = append(errorEntries, result.ErrorLogEntries(now)...)
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Inputs", "Succeeded", "Failed", "Records", "Rendered", "Warnings", "Elapsed"},
		[][]string{{
			strconv.Itoa(summary.TotalFiles),
			strconv.Itoa(summary.SuccessfulFiles),
			strconv.Itoa(summary.FailedFiles),
			strconv.Itoa(summary.TotalRecords),
			strconv.Itoa(summary.Rendered),
			strconv.Itoa(summary.Warnings),
			summary.EndTime.Sub(startTime).Round(time.Millisecond).String(),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if !dryRun {
		writeRunLogs(cmd, runLog, summary, errorEntries)
	}

	runLog.Info("render run finished",
		zap.Int("rendered", summary.Rendered),
		zap.Int("failed_inputs", summary.FailedFiles),
		zap.Duration("duration", summary.EndTime.Sub(startTime)),
	)

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d input(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// collectJobs builds one converter per input.
func collectJobs(deps converter.Dependencies, files *utils.FileManager) ([]*converter.Converter, error) {
	switch {
	case renderDemo:
		sample := []types.TransactionRecord{types.SampleTransaction()}
		return []*converter.Converter{converter.NewFromRecords("sample", sample, deps)}, nil

	case renderFile != "":
		if !records.Supported(renderFile) {
			return nil, fmt.Errorf("%w: %s", records.ErrUnsupportedFormat, renderFile)
		}
		// A single file named on the command line is left where it is.
		single := deps
		single.Files = nil
		return []*converter.Converter{converter.New(renderFile, single)}, nil
	}

	inputs, err := files.DiscoverInputFiles(records.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}

	jobs := make([]*converter.Converter, len(inputs))
	for i, path := range inputs {
		jobs[i] = converter.New(path, deps)
	}
	return jobs, nil
}

// processJobs runs the converters on a bounded worker pool and returns the
// results in input order.
func processJobs(ctx context.Context, jobs []*converter.Converter, workers int) []converter.Result {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]converter.Result, len(jobs))
	indexes := make(chan int, len(jobs))
	for i := range jobs {
		indexes <- i
	}
	close(indexes)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = jobs[i].Run(ctx)
			}
		}()
	}
	wg.Wait()

	return results
}

// printResult writes one line per receipt. Committed receipts print their
// artifact name.
func printResult(cmd *cobra.Command, result converter.Result) {
	out := cmd.OutOrStdout()
	name := filepath.Base(result.FilePath)

	if result.ErrorType == converter.ErrorTypeLoad {
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		return
	}

	for _, r := range result.Receipts {
		switch {
		case r.Error != nil:
			fmt.Fprintf(out, "  ✗ %s #%d (%s): %v\n", name, r.Index, r.CustomerID, r.Error)
		case r.Planned != nil:
			fmt.Fprintf(out, "  - %s #%d -> %s (dry run, %d rows)\n", name, r.Index, r.Planned.Name, r.Planned.Rows)
		case r.Rendered != nil:
			fmt.Fprintf(out, "  ✓ %s #%d -> %s\n", name, r.Index, r.Rendered.Name)
		}
	}
}

// writeRunLogs writes the error log and summary. Failures are logged only.
func writeRunLogs(cmd *cobra.Command, runLog *zap.Logger, summary utils.ProcessingSummary, entries []utils.ErrorLogEntry) {
	out := cmd.OutOrStdout()

	if path, err := utils.WriteErrorLog(entries, mainConfig.LogsDir, summary.RunID); err != nil {
		runLog.Warn("failed to write error log", zap.Error(err))
	} else if path != "" {
		fmt.Fprintf(out, "Errors have been logged to %s\n", path)
	}

	if _, err := utils.WriteSummaryLog(summary, mainConfig.LogsDir); err != nil {
		runLog.Warn("failed to write summary log", zap.Error(err))
	}
}
