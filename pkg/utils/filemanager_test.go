package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "logs"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestEnsureDirectories(t *testing.T) {
	fm := newTestManager(t)
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	for _, name := range []string{"b.yaml", "a.CSV", "c.xlsx", "notes.txt", ".hidden.csv"} {
		touch(t, filepath.Join(fm.InputDir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.csv"), 0o755))

	files, err := fm.DiscoverInputFiles([]string{".yaml", ".yml", ".csv", ".xlsx"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "a.CSV"),
		filepath.Join(fm.InputDir, "b.yaml"),
		filepath.Join(fm.InputDir, "c.xlsx"),
	}, files)
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := &FileManager{InputDir: filepath.Join(t.TempDir(), "absent")}
	_, err := fm.DiscoverInputFiles([]string{".csv"})
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	fm := newTestManager(t)
	src := filepath.Join(fm.InputDir, "june.yaml")
	touch(t, src)

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "june.yaml"), archived)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, src)
}

func TestArchiveInputFile_Disabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveOnSuccess = false
	src := filepath.Join(fm.InputDir, "june.yaml")
	touch(t, src)

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, archived)
	assert.FileExists(t, src)
}

func TestGetArchivePath_TimestampSubdirs(t *testing.T) {
	fm := &FileManager{UseTimestampSubdirs: true}
	now := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)

	got := fm.getArchivePath("arch", "in/june.yaml", now)
	assert.Equal(t, filepath.Join("arch", "2024", "06", "08", "june.yaml"), got)
}

func TestWriteErrorLog(t *testing.T) {
	fm := newTestManager(t)

	path, err := WriteErrorLog(nil, fm.LogsDir, "run")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "june.csv",
		ErrorType:    "validation",
		ErrorMessage: "customer_name is required",
		RecordIndex:  2,
		CustomerID:   "SS1256",
		RowNumber:    7,
		FieldName:    "CustomerName",
	}}, fm.LogsDir, "run-42")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Run ID: run-42")
	assert.Contains(t, content, "Total Errors: 1")
	assert.Contains(t, content, "customer_name is required")
	assert.Contains(t, content, "Row Number:     7")
	assert.NotContains(t, content, "Value:")
}

func TestRenderSummary(t *testing.T) {
	start := time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC)
	summary := ProcessingSummary{
		RunID:           "run-1",
		StartTime:       start,
		EndTime:         start.Add(1500 * time.Millisecond),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalRecords:    3,
		Rendered:        2,
		ProcessedFiles: []ProcessedFileInfo{{
			InputFile: "input/june.yaml",
			Receipts:  []string{"receipt_2024-06-08.pdf"},
		}},
		FailedFilesList: []FailedFileInfo{{
			InputFile:    "input/july.csv",
			ErrorType:    "parse",
			ErrorMessage: "missing columns: date",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, summary))

	out := buf.String()
	assert.Contains(t, out, "Run ID:         run-1")
	assert.Contains(t, out, "Duration:       1.5s")
	assert.Contains(t, out, "receipt_2024-06-08.pdf")
	assert.Contains(t, out, "missing columns: date")
	assert.Contains(t, out, "End of Summary")

	path, err := WriteSummaryLog(summary, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "processing_summary_20240608_090001")
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
