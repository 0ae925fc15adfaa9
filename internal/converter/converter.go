// =============================================================================
// Receipt Generator - Converter Module
// =============================================================================
//
// This module runs the receipt pipeline for a single input file, from
// decoding the file to archiving it once every receipt is on disk.
//
// PIPELINE:
//   1. Load the records (YAML, CSV or XLSX)
//   2. Validate each record; warnings are logged, errors skip the record
//   3. Render each valid record to its own PDF (or lay it out in dry-run mode)
//   4. Record each committed receipt in the history store
//   5. Archive the input file if every record rendered
//
// CONCURRENCY:
//   A Converter handles one file. The render command runs several
//   Converters at once; they share the Renderer, Validator and history
//   store, all of which are safe for concurrent use.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/receipt-generator/internal/config"
	"github.com/ginjaninja78/receipt-generator/internal/history"
	"github.com/ginjaninja78/receipt-generator/internal/logger"
	"github.com/ginjaninja78/receipt-generator/internal/records"
	"github.com/ginjaninja78/receipt-generator/internal/renderer"
	"github.com/ginjaninja78/receipt-generator/internal/types"
	"github.com/ginjaninja78/receipt-generator/internal/validation"
	"github.com/ginjaninja78/receipt-generator/pkg/utils"
)

// Error types reported in Result.ErrorType and the run error log.
const (
	ErrorTypeLoad       = "load"
	ErrorTypeValidation = "validation"
	ErrorTypeRender     = "render"
	ErrorTypeCancelled  = "cancelled"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file, or a label for in-memory records.
	FilePath string

	// Receipts holds one entry per record, in input order. Records after a
	// failure are absent when ContinueOnError is off.
	Receipts []ReceiptResult

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Success is set when every record rendered.
	Success bool

	// Error is the first failure, and ErrorType classifies it.
	Error     error
	ErrorType string

	// Warnings are the non-fatal validation problems of all records.
	Warnings []*validation.ValidationError

	Stats ProcessingStats
}

// ReceiptResult is the outcome for one record.
type ReceiptResult struct {
	Index      int
	Date       string
	CustomerID string

	// Rendered is set for a committed artifact; Planned for a dry run.
	Rendered *renderer.Result
	Planned  *renderer.DryRunResult

	Error     error
	ErrorType string
}

// Name returns the artifact name, committed or planned.
func (r ReceiptResult) Name() string {
	switch {
	case r.Rendered != nil:
		return r.Rendered.Name
	case r.Planned != nil:
		return r.Planned.Name
	}
	return ""
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	RecordsLoaded  int
	Rendered       int
	Failed         int
	Warnings       int
	LineItems      int
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// HistoryRecorder stores committed receipts. *history.Store implements it.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Dependencies are shared by every Converter of a run.
type Dependencies struct {
	Config    *config.MainConfig
	Renderer  *renderer.Renderer
	Validator *validation.Validator

	// Files archives inputs. Nil disables archiving.
	Files *utils.FileManager

	// History records committed receipts. Nil disables history.
	History HistoryRecorder

	Logger *zap.Logger
	RunID  string

	// DryRun lays receipts out without writing, recording or archiving.
	DryRun bool
}

// Converter handles one input.
type Converter struct {
	path    string
	load    func() ([]types.TransactionRecord, error)
	archive bool
	deps    Dependencies
	logger  *zap.Logger
}

// New creates a Converter for an input file.
func New(path string, deps Dependencies) *Converter {
	c := newConverter(path, deps)
	c.archive = true
	c.load = func() ([]types.TransactionRecord, error) {
		return records.Load(path, deps.Config.CSV)
	}
	return c
}

// NewFromRecords creates a Converter for records already in memory. label
// stands in for the file name in results and logs. Nothing is archived.
func NewFromRecords(label string, recs []types.TransactionRecord, deps Dependencies) *Converter {
	c := newConverter(label, deps)
	c.load = func() ([]types.TransactionRecord, error) {
		return recs, nil
	}
	return c
}

func newConverter(path string, deps Dependencies) *Converter {
	return &Converter{
		path: path,
		deps: deps,
		logger: logger.OrNop(deps.Logger).With(
			zap.String("file", filepath.Base(path)),
			zap.String("run_id", deps.RunID),
		),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the input.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.path}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Info("processing input")

	// =========================================================================
	// STEP 1: LOAD RECORDS
	// =========================================================================

	recs, err := c.load()
	if err != nil {
		result.Error = fmt.Errorf("failed to load records: %w", err)
		result.ErrorType = ErrorTypeLoad
		c.logger.Error("failed to load records", zap.Error(err))
		return result
	}

	result.Stats.RecordsLoaded = len(recs)
	c.logger.Debug("loaded records", zap.Int("records", len(recs)))

	// =========================================================================
	// STEPS 2-4: VALIDATE, RENDER, RECORD
	// =========================================================================

	for i := range recs {
		rec := &recs[i]
		receipt := c.processRecord(ctx, rec, &result)
		result.Receipts = append(result.Receipts, receipt)

		if receipt.Error != nil {
			result.Stats.Failed++
			if result.Error == nil {
				result.Error = receipt.Error
				result.ErrorType = receipt.ErrorType
			}
			if receipt.ErrorType == ErrorTypeCancelled || !c.deps.Config.Processing.ContinueOnError {
				break
			}
			continue
		}

		result.Stats.Rendered++
		result.Stats.LineItems += rec.ItemCount()
	}

	if result.Error != nil {
		c.logger.Warn("input finished with failures",
			zap.Int("rendered", result.Stats.Rendered),
			zap.Int("failed", result.Stats.Failed),
		)
		return result
	}

	// =========================================================================
	// STEP 5: ARCHIVE INPUT
	// =========================================================================

	result.Success = true

	if c.archive && !c.deps.DryRun && c.deps.Files != nil && c.deps.Config.Processing.ArchiveInputs {
		archived, err := c.deps.Files.ArchiveInputFile(c.path)
		if err != nil {
			// The receipts are committed; a failed move only leaves the input
			// in place for the next run.
			c.logger.Warn("failed to archive input", zap.Error(err))
		} else {
			result.ArchivePath = archived
		}
	}

	c.logger.Info("input processed",
		zap.Int("receipts", result.Stats.Rendered),
		zap.Int("warnings", result.Stats.Warnings),
		zap.Duration("duration", time.Since(startTime)),
	)
	return result
}

// processRecord validates and renders one record.
func (c *Converter) processRecord(ctx context.Context, rec *types.TransactionRecord, result *Result) ReceiptResult {
	receipt := ReceiptResult{
		Index:      rec.Source.Index,
		Date:       rec.Date,
		CustomerID: rec.CustomerID,
	}
	log := c.logger.With(zap.Int("record", rec.Source.Index), zap.String("customer_id", rec.CustomerID))

	if err := ctx.Err(); err != nil {
		receipt.Error = err
		receipt.ErrorType = ErrorTypeCancelled
		return receipt
	}

	warnings, err := c.deps.Validator.Check(rec)
	for _, w := range warnings {
		log.Warn("validation warning", zap.String("field", w.Field), zap.String("problem", w.Message))
	}
	result.Warnings = append(result.Warnings, warnings...)
	result.Stats.Warnings += len(warnings)

	if err != nil {
		log.Error("record is invalid", zap.Error(err))
		receipt.Error = err
		receipt.ErrorType = ErrorTypeValidation
		return receipt
	}

	if c.deps.DryRun {
		planned, err := c.deps.Renderer.DryRun(rec)
		if err != nil {
			receipt.Error = err
			receipt.ErrorType = ErrorTypeRender
			return receipt
		}
		receipt.Planned = planned
		log.Info("dry run", zap.String("artifact", planned.Name), zap.Int("ops", len(planned.Ops)))
		return receipt
	}

	rendered, err := c.deps.Renderer.Render(ctx, rec)
	if err != nil {
		receipt.Error = err
		receipt.ErrorType = ErrorTypeRender
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			receipt.ErrorType = ErrorTypeCancelled
		}
		return receipt
	}
	receipt.Rendered = rendered

	if c.deps.History != nil {
		_, err := c.deps.History.Record(ctx, history.Entry{
			RunID:        c.deps.RunID,
			Date:         rec.Date,
			CustomerID:   rec.CustomerID,
			CustomerName: rec.CustomerName,
			Total:        rec.Total,
			Items:        rec.ItemCount(),
			Overflow:     rendered.Overflow,
			SourceFile:   rec.Source.File,
			Path:         rendered.Path,
			Size:         rendered.Size,
		})
		if err != nil {
			// History is a convenience; the receipt itself is committed.
			log.Warn("failed to record history", zap.Error(err))
		}
	}

	return receipt
}

// =============================================================================
// REPORTING
// =============================================================================

// ErrorLogEntries flattens the failures of a result for the run error log.
func (r Result) ErrorLogEntries(now time.Time) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry

	if r.ErrorType == ErrorTypeLoad {
		return append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     r.FilePath,
			ErrorType:    r.ErrorType,
			ErrorMessage: r.Error.Error(),
		})
	}

	for _, receipt := range r.Receipts {
		if receipt.Error == nil {
			continue
		}

		var invalid *validation.InvalidRecordError
		if errors.As(receipt.Error, &invalid) {
			for _, p := range invalid.Problems {
				entries = append(entries, utils.ErrorLogEntry{
					Timestamp:    now,
					FileName:     r.FilePath,
					ErrorType:    receipt.ErrorType,
					ErrorMessage: p.Message,
					RecordIndex:  receipt.Index,
					CustomerID:   receipt.CustomerID,
					RowNumber:    p.RowNumber,
					FieldName:    p.Field,
					FieldValue:   p.Value,
				})
			}
			continue
		}

		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     r.FilePath,
			ErrorType:    receipt.ErrorType,
			ErrorMessage: receipt.Error.Error(),
			RecordIndex:  receipt.Index,
			CustomerID:   receipt.CustomerID,
		})
	}

	return entries
}
