// =============================================================================
// Receipt Generator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the generator:
//   - Input discovery
//   - Archival of processed inputs
//   - Run error logs and summaries
//   - Directory management and run identifiers
//
// ARCHIVAL STRATEGY:
//   - An input file is moved to the input archive once every record in it
//     has been rendered
//   - Files with any failed record stay in the input directory
//   - Error logs and summaries are written to the logs directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around a render run.
type FileManager struct {
	// InputDir is where input files are discovered.
	InputDir string

	// OutputDir receives rendered receipts.
	OutputDir string

	// InputArchiveDir receives inputs that rendered completely.
	InputArchiveDir string

	// LogsDir receives error logs and run summaries.
	LogsDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/06/08/june.yaml
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether inputs are archived at all.
	ArchiveOnSuccess bool
}

// NewFileManager creates a FileManager with archiving enabled.
func NewFileManager(inputDir, outputDir, inputArchiveDir, logsDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		LogsDir:          logsDir,
		ArchiveOnSuccess: true,
	}
}

// NewRunID returns a fresh identifier for one render run.
func NewRunID() string {
	return uuid.NewString()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all configured directories that don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.InputArchiveDir,
		fm.LogsDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists regular files in the input directory whose
// extension is one of extensions (case-insensitive), sorted by name. Hidden
// files are skipped.
func (fm *FileManager) DiscoverInputFiles(extensions []string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !wanted[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		result = append(result, filepath.Join(fm.InputDir, name))
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file, or filePath when archiving is off.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess || fm.InputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath, time.Now())

	archiveDir := filepath.Dir(archivePath)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string, now time.Time) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one failure recorded during a run.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RecordIndex  int
	CustomerID   string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes error entries to a timestamped file in logsDir.
//
// RETURNS:
//   - The path to the error log file, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, logsDir, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(logsDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Receipt Generator - Error Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"%s\n\n",
		runID,
		now.Format("2006-01-02 15:04:05"),
		len(entries),
		strings.Repeat("=", 80))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RecordIndex > 0 {
			fmt.Fprintf(writer, "  Record:         %d\n", entry.RecordIndex)
		}
		if entry.CustomerID != "" {
			fmt.Fprintf(writer, "  Customer ID:    %s\n", entry.CustomerID)
		}
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(strings.Repeat("=", 80) + "\nEnd of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one render run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRecords    int
	Rendered        int
	Warnings        int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes an input whose records all rendered.
type ProcessedFileInfo struct {
	InputFile   string
	ArchivePath string
	Receipts    []string
	Warnings    int
	ProcessTime time.Duration
}

// FailedFileInfo describes an input with at least one failure.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes a run summary to a timestamped file in logsDir.
func WriteSummaryLog(summary ProcessingSummary, logsDir string) (string, error) {
	summaryPath := filepath.Join(logsDir,
		fmt.Sprintf("processing_summary_%s.txt", summary.EndTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := RenderSummary(writer, summary); err != nil {
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// RenderSummary writes the run statistics and per-file tables to w.
func RenderSummary(w io.Writer, summary ProcessingSummary) error {
	duration := summary.EndTime.Sub(summary.StartTime)

	_, err := fmt.Fprintf(w, "Receipt Generator - Processing Summary\n"+
		"%s\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Records:        %d\n"+
		"  Rendered:       %d\n"+
		"  Warnings:       %d\n\n",
		strings.Repeat("=", 80),
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.Round(time.Millisecond).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRecords,
		summary.Rendered,
		summary.Warnings)
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if len(summary.ProcessedFiles) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle("Successful Files")
		tw.AppendHeader(table.Row{"Input", "Receipts", "Warnings", "Archived To", "Time"})
		for _, pf := range summary.ProcessedFiles {
			tw.AppendRow(table.Row{
				filepath.Base(pf.InputFile),
				strings.Join(pf.Receipts, "\n"),
				pf.Warnings,
				pf.ArchivePath,
				pf.ProcessTime.Round(time.Millisecond).String(),
			})
		}
		tw.Render()
		fmt.Fprintln(w)
	}

	if len(summary.FailedFilesList) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle("Failed Files")
		tw.AppendHeader(table.Row{"Input", "Type", "Error"})
		for _, ff := range summary.FailedFilesList {
			tw.AppendRow(table.Row{filepath.Base(ff.InputFile), ff.ErrorType, ff.ErrorMessage})
		}
		tw.Render()
		fmt.Fprintln(w)
	}

	_, err = fmt.Fprintf(w, "%s\nEnd of Summary\n", strings.Repeat("=", 80))
	return err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
