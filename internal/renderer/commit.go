package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName  = ".render.lock"
	lockRetryWait = 25 * time.Millisecond
)

type commitResult struct {
	Path     string
	Size     int64
	Replaced bool
}

// commitArtifact writes the artifact to a temp file next to its final path
// and renames it into place while holding the lock file in lockDir (dir when
// empty). The final path either holds a complete document or is left
// untouched; the temp file is removed on every failure path.
func commitArtifact(ctx context.Context, dir, lockDir, name string, write func(io.Writer) error) (*commitResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to seal page", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to flush artifact", err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to stat artifact", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to close artifact", err)
	}

	if lockDir == "" {
		lockDir = dir
	} else if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create lock directory", err)
	}

	lock := flock.New(filepath.Join(lockDir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryWait)
	if err != nil || !locked {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, NewRenderError(ErrCodeCancelled, "cancelled waiting for output lock", ctxErr)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to lock output directory", err)
	}
	defer func() { _ = lock.Unlock() }()

	finalPath := filepath.Join(dir, name)

	replaced := false
	if _, err := os.Stat(finalPath); err == nil {
		replaced = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to stat existing artifact", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, fmt.Sprintf("failed to move artifact into place as %s", name), err)
	}
	committed = true

	return &commitResult{Path: finalPath, Size: info.Size(), Replaced: replaced}, nil
}
