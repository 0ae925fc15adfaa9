// =============================================================================
// Receipt Generator - Page Renderer
// =============================================================================
//
// The renderer turns one TransactionRecord into one committed PDF artifact.
//
// RENDER SEQUENCE:
//   1. Derive the artifact name from the record.
//   2. Check the item count against the page (overflow policy).
//   3. Allocate a fresh single-page canvas.
//   4. Draw header, table and footer, each from its own page anchor.
//   5. Seal the canvas into a temp file and rename it into place.
//
//   Any failure before step 5 completes leaves no file behind. Rendering the
//   same date twice overwrites the first artifact.
//
// CONCURRENCY:
//   A Renderer holds only immutable configuration. Each Render call owns its
//   canvas, so one Renderer can serve several workers.
//
// =============================================================================

package renderer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/layout"
	"github.com/ginjaninja78/receipt-generator/internal/logger"
	"github.com/ginjaninja78/receipt-generator/internal/pdfcanvas"
	"github.com/ginjaninja78/receipt-generator/internal/types"
)

// Options configure a Renderer.
type Options struct {
	// OutputDir receives committed artifacts.
	OutputDir string

	// LockDir holds the lock file that serializes commits. Every process
	// writing to OutputDir must use the same LockDir. Default: OutputDir.
	LockDir string

	// FileNameFormat, see ArtifactName. Default: DefaultFileNameFormat.
	FileNameFormat string

	// CurrencySymbol prefixes amounts. Default: currency.DefaultSymbol.
	CurrencySymbol string

	Layout layout.Config
	PDF    pdfcanvas.Options
}

// Result describes a committed artifact.
type Result struct {
	// Path is the artifact's full path; Name is its base name.
	Path string
	Name string

	Size int64
	Rows int

	// Overflow is set when rows were drawn past the bottom margin.
	Overflow bool

	// Replaced is set when an earlier artifact with the same name existed.
	Replaced bool

	Duration time.Duration
}

// DryRunResult describes a layout pass that was not written anywhere.
type DryRunResult struct {
	Name     string
	Rows     int
	Overflow bool
	Ops      []layout.Op
}

// Renderer lays out and commits receipts.
type Renderer struct {
	opts      Options
	formatter *currency.Formatter
	logger    *zap.Logger
}

// New creates a Renderer. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Renderer {
	if opts.FileNameFormat == "" {
		opts.FileNameFormat = DefaultFileNameFormat
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Layout.Page.Size.Width == 0 {
		opts.Layout = layout.DefaultConfig()
	}
	return &Renderer{
		opts:      opts,
		formatter: currency.New(opts.CurrencySymbol),
		logger:    logger.OrNop(log).Named("renderer"),
	}
}

// =============================================================================
// RENDER
// =============================================================================

// Render draws rec onto a new page and commits it as one artifact.
//
// RETURNS:
//   - The committed artifact.
//   - A *RenderError on any failure; no artifact is left half-written.
func (r *Renderer) Render(ctx context.Context, rec *types.TransactionRecord) (*Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeCancelled, "render cancelled", err)
	}

	name, err := ArtifactName(r.opts.FileNameFormat, rec)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to name artifact", err)
	}

	log := r.logger.With(zap.String("artifact", name), zap.Int("rows", rec.ItemCount()))

	overflow, err := r.checkFit(rec, log)
	if err != nil {
		return nil, err
	}

	pdfOpts := r.opts.PDF
	if pdfOpts.Title == "" {
		pdfOpts.Title = r.opts.Layout.Subtitle + " " + rec.Date
	}
	canvas, err := pdfcanvas.New(r.opts.Layout.Page.Size, pdfOpts)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to allocate page", err)
	}

	if err := r.Layout(canvas, rec); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeCancelled, "render cancelled before commit", err)
	}

	committed, err := commitArtifact(ctx, r.opts.OutputDir, r.opts.LockDir, name, canvas.Seal)
	if err != nil {
		log.Error("failed to commit artifact", zap.Error(err))
		return nil, err
	}

	result := &Result{
		Path:     committed.Path,
		Name:     name,
		Size:     committed.Size,
		Rows:     rec.ItemCount(),
		Overflow: overflow,
		Replaced: committed.Replaced,
		Duration: time.Since(start),
	}

	log.Info("receipt rendered",
		zap.String("path", result.Path),
		zap.Int64("size", result.Size),
		zap.Bool("replaced", result.Replaced),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// Layout draws rec onto any canvas. Sections start from fixed page anchors.
func (r *Renderer) Layout(c layout.Canvas, rec *types.TransactionRecord) error {
	if err := layout.Compose(c, rec, r.opts.Layout, r.formatter); err != nil {
		var overflow *layout.OverflowError
		if errors.As(err, &overflow) {
			return NewRenderError(ErrCodeLayoutOverflow, "record does not fit on one page", err)
		}
		return NewRenderError(ErrCodeRenderFailed, "failed to lay out page", err)
	}
	return nil
}

// DryRun lays rec out onto an in-memory canvas and reports what would be
// drawn. Nothing is written.
func (r *Renderer) DryRun(rec *types.TransactionRecord) (*DryRunResult, error) {
	name, err := ArtifactName(r.opts.FileNameFormat, rec)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to name artifact", err)
	}

	overflow, err := r.checkFit(rec, r.logger.With(zap.String("artifact", name)))
	if err != nil {
		return nil, err
	}

	rc := layout.NewRecorder()
	if err := r.Layout(rc, rec); err != nil {
		return nil, err
	}

	return &DryRunResult{Name: name, Rows: rec.ItemCount(), Overflow: overflow, Ops: rc.Ops}, nil
}

// checkFit applies the overflow policy before anything is drawn.
func (r *Renderer) checkFit(rec *types.TransactionRecord, log *zap.Logger) (bool, error) {
	err := r.opts.Layout.CheckFit(rec)
	if err == nil {
		return false, nil
	}

	if r.opts.Layout.Overflow == layout.OverflowReject {
		return true, NewRenderError(ErrCodeLayoutOverflow, "record does not fit on one page", err)
	}

	log.Warn("items run past the bottom margin", zap.Int("max_rows", r.opts.Layout.MaxRows()))
	return true, nil
}
