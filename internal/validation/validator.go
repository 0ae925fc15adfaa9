// =============================================================================
// Receipt Generator - Record Validation
// =============================================================================
//
// This module checks transaction records before they reach the renderer.
// The layout engine itself trusts its input; everything that can be wrong
// with a record is caught here instead.
//
// VALIDATION LEVELS:
//   1. Field-level: struct tags on types.TransactionRecord / types.LineItem
//      (required fields, non-negative quantities and amounts), enforced by
//      go-playground/validator.
//   2. Item-level: line total against quantity x unit price.
//   3. Record-level: grand total against the sum of line totals.
//
// SEVERITY:
//   - Field-level failures are always errors. The record is not rendered.
//   - Consistency mismatches are warnings, and become errors when
//     Options.StrictTotals is set.
//
// =============================================================================

package validation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/receipt-generator/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a single problem found in a record.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the path of the offending field, e.g. "Items[2].UnitPrice".
	Field string

	// Value is the offending value as text.
	Value string

	// Rule is the check that failed ("required", "gte", "line_total", ...).
	Rule string

	// Message is a human-readable description.
	Message string

	// File and RecordIndex locate the record in its input.
	File        string
	RecordIndex int

	// LineItem is the 1-indexed item number, or 0 for record-level problems.
	LineItem int

	// RowNumber is the source row of the item when known.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	loc := fmt.Sprintf("Record %d", e.RecordIndex)
	if e.File != "" {
		loc = fmt.Sprintf("%s record %d", e.File, e.RecordIndex)
	}
	if e.LineItem > 0 {
		loc += fmt.Sprintf(", LineItem %d", e.LineItem)
	}
	if e.RowNumber > 0 {
		loc += fmt.Sprintf(" (row %d)", e.RowNumber)
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity), loc, e.Field, e.Message, e.Value)
}

// IsFatal reports whether the problem blocks rendering.
func (e *ValidationError) IsFatal() bool {
	return e.Severity == SeverityError
}

// InvalidRecordError is returned when a record has at least one fatal
// validation problem.
type InvalidRecordError struct {
	Source     types.Source
	CustomerID string
	Problems   []*ValidationError
}

func (e *InvalidRecordError) Error() string {
	fatal := fatalOnly(e.Problems)
	if len(fatal) == 0 {
		return fmt.Sprintf("invalid record %d", e.Source.Index)
	}
	msg := fmt.Sprintf("invalid record %d", e.Source.Index)
	if e.CustomerID != "" {
		msg += fmt.Sprintf(" (customer %s)", e.CustomerID)
	}
	msg += fmt.Sprintf(": %s: %s", fatal[0].Field, fatal[0].Message)
	if len(fatal) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(fatal)-1)
	}
	return msg
}

// IsInvalidRecord reports whether err wraps an *InvalidRecordError.
func IsInvalidRecord(err error) bool {
	var target *InvalidRecordError
	return errors.As(err, &target)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult summarizes validation of a batch of records.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all problems, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	RecordsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options control validation strictness.
type Options struct {
	// StrictTotals turns line-total and grand-total mismatches into errors.
	StrictTotals bool

	// TreatWarningsAsErrors makes every warning fatal.
	TreatWarningsAsErrors bool
}

// Validator checks transaction records. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	options  Options
}

var itemIndexPattern = regexp.MustCompile(`Items\[(\d+)\]`)

// NewValidator creates a Validator with the given options.
func NewValidator(options Options) *Validator {
	v := validator.New()

	// Amounts are decimals; compare them as numbers in tags like gte=0.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{validate: v, options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// ValidateRecord returns every problem found in rec, warnings included.
func (v *Validator) ValidateRecord(rec *types.TransactionRecord) []*ValidationError {
	var problems []*ValidationError

	if err := v.validate.Struct(rec); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				problems = append(problems, v.fromFieldError(rec, fe))
			}
		} else {
			problems = append(problems, v.newProblem(rec, SeverityError, "", "", "struct", err.Error(), 0))
		}
	}

	problems = append(problems, v.checkConsistency(rec)...)
	return problems
}

// Check validates rec and returns an *InvalidRecordError if anything fatal
// was found, together with the non-fatal warnings.
func (v *Validator) Check(rec *types.TransactionRecord) ([]*ValidationError, error) {
	problems := v.ValidateRecord(rec)

	var warnings []*ValidationError
	for _, p := range problems {
		if !p.IsFatal() {
			warnings = append(warnings, p)
		}
	}

	if len(fatalOnly(problems)) > 0 {
		return warnings, &InvalidRecordError{
			Source:     rec.Source,
			CustomerID: rec.CustomerID,
			Problems:   problems,
		}
	}
	return warnings, nil
}

// ValidateAll validates a batch and returns a summary.
func (v *Validator) ValidateAll(records []types.TransactionRecord) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	for i := range records {
		problems := v.ValidateRecord(&records[i])
		result.Errors = append(result.Errors, problems...)
		result.RecordsValidated++
	}

	for _, p := range result.Errors {
		if p.IsFatal() {
			result.ErrorCount++
		} else {
			result.WarningCount++
		}
	}
	result.IsValid = result.ErrorCount == 0

	return result
}

// =============================================================================
// CONSISTENCY CHECKS
// =============================================================================

// checkConsistency compares line totals and the grand total against the
// amounts they are conceptually derived from. The renderer never recomputes
// them; this only reports.
func (v *Validator) checkConsistency(rec *types.TransactionRecord) []*ValidationError {
	severity := SeverityWarning
	if v.options.StrictTotals {
		severity = SeverityError
	}

	var problems []*ValidationError

	if len(rec.Items) == 0 {
		problems = append(problems, v.newProblem(rec, SeverityWarning, "Items", "0", "items",
			"record has no line items", 0))
	}

	for i, item := range rec.Items {
		want := item.ExpectedTotal()
		if !item.LineTotal.Round(2).Equal(want.Round(2)) {
			p := v.newProblem(rec, severity, fmt.Sprintf("Items[%d].LineTotal", i),
				item.LineTotal.StringFixed(2), "line_total",
				fmt.Sprintf("line total does not equal %d x %s = %s", item.Quantity, item.UnitPrice.StringFixed(2), want.StringFixed(2)),
				i+1)
			p.RowNumber = item.Row
			problems = append(problems, p)
		}
	}

	if sum := rec.SumOfLineTotals(); !rec.Total.Round(2).Equal(sum.Round(2)) {
		problems = append(problems, v.newProblem(rec, severity, "Total", rec.Total.StringFixed(2), "grand_total",
			fmt.Sprintf("total does not equal the sum of line totals (%s)", sum.StringFixed(2)), 0))
	}

	return problems
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (v *Validator) newProblem(rec *types.TransactionRecord, severity, field, value, rule, message string, lineItem int) *ValidationError {
	if v.options.TreatWarningsAsErrors {
		severity = SeverityError
	}
	return &ValidationError{
		Severity:    severity,
		Field:       field,
		Value:       value,
		Rule:        rule,
		Message:     message,
		File:        rec.Source.File,
		RecordIndex: rec.Source.Index,
		LineItem:    lineItem,
	}
}

func (v *Validator) fromFieldError(rec *types.TransactionRecord, fe validator.FieldError) *ValidationError {
	field := strings.TrimPrefix(fe.Namespace(), "TransactionRecord.")

	lineItem := 0
	if m := itemIndexPattern.FindStringSubmatch(field); len(m) == 2 {
		if idx, err := strconv.Atoi(m[1]); err == nil {
			lineItem = idx + 1
		}
	}

	p := v.newProblem(rec, SeverityError, field, fmt.Sprint(fe.Value()), fe.Tag(), validationMessage(fe), lineItem)
	if lineItem > 0 && lineItem <= len(rec.Items) {
		p.RowNumber = rec.Items[lineItem-1].Row
	}
	return p
}

// validationMessage returns a human-readable message for a failed tag.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	default:
		return "Invalid value"
	}
}

func fatalOnly(problems []*ValidationError) []*ValidationError {
	var out []*ValidationError
	for _, p := range problems {
		if p.IsFatal() {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation problems for display or logging.
func FormatErrors(problems []*ValidationError) string {
	if len(problems) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(problems)))

	for i, p := range problems {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation problems to filePath, replacing any
// existing file.
//
// PARAMETERS:
//   - problems: The validation problems to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(problems []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation log written %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "%s\n", strings.Repeat("=", 78))
	writer.WriteString(FormatErrors(problems))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return file.Sync()
}
