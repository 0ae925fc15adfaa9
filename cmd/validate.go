// =============================================================================
// Receipt Generator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the input files without rendering anything.
//
// COMMAND USAGE:
//   receipt-generator validate [--file path] [--log path]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/receipt-generator/internal/records"
	"github.com/ginjaninja78/receipt-generator/internal/validation"
	"github.com/ginjaninja78/receipt-generator/pkg/utils"
)

var (
	validateFile string
	validateLog  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and inputs without rendering",
	Long: `The validate command loads the configuration, reads every input file and
checks each transaction. Errors would stop a receipt from rendering;
warnings (such as a total that differs from the sum of line totals) would
not.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Validate a single input file")
	validateCmd.Flags().StringVar(&validateLog, "log", "", "Write the problems to this file")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration OK (%s)\n", cfgFile)

	inputs := []string{validateFile}
	if validateFile == "" {
		files := utils.NewFileManager(mainConfig.InputDir, "", "", "")
		found, err := files.DiscoverInputFiles(records.Extensions)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputs = found
	}
	if len(inputs) == 0 {
		fmt.Fprintln(out, "No input files found in the input directory.")
		return nil
	}

	v := validation.NewValidator(validation.Options{StrictTotals: mainConfig.Processing.StrictTotals})

	var (
		problems   []*validation.ValidationError
		rows       [][]string
		loadErrors int
		errorCount int
	)

	for _, path := range inputs {
		recs, err := records.Load(path, mainConfig.CSV)
		if err != nil {
			loadErrors++
			rows = append(rows, []string{filepath.Base(path), "-", "-", "0", "0", err.Error()})
			continue
		}

		result := v.ValidateAll(recs)
		problems = append(problems, result.Errors...)
		errorCount += result.ErrorCount

		status := "ok"
		if !result.IsValid {
			status = "invalid"
		}
		rows = append(rows, []string{
			filepath.Base(path),
			strconv.Itoa(result.RecordsValidated),
			status,
			strconv.Itoa(result.ErrorCount),
			strconv.Itoa(result.WarningCount),
			"",
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Input", "Records", "Status", "Errors", "Warnings", "Load Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	))

	if len(problems) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, validation.FormatErrors(problems))
	}

	if validateLog != "" {
		if err := validation.WriteErrorLog(problems, validateLog); err != nil {
			return err
		}
		fmt.Fprintf(out, "Problems written to %s\n", validateLog)
	}

	if loadErrors > 0 || errorCount > 0 {
		return fmt.Errorf("validation failed: %d unreadable input(s), %d error(s)", loadErrors, errorCount)
	}
	return nil
}
