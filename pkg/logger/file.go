package logger

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for FileLogger.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// ErrLogPathIsDir is returned when the log file path names a directory.
var ErrLogPathIsDir = errors.New("log path is a directory")

// FileLogger writes leveled messages to a log file.
type FileLogger struct {
	*StandardLogger
	w io.WriteCloser

	closeOnce sync.Once
	closeErr  error
}

// NewFileLogger returns a logger appending to path on fs, creating the
// parent directory first. On the OS filesystem the file is size-rotated by
// lumberjack and backups are gzip-compressed; any other afero.Fs gets a
// plain append-only file without rotation.
func NewFileLogger(fs afero.Fs, path string) (*FileLogger, error) {
	if path == "" {
		return nil, errors.New("empty log path")
	}
	if fi, err := fs.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrLogPathIsDir, path)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	w, err := openLogWriter(fs, path)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		StandardLogger: NewStandardLogger(log.New(w, "", log.LstdFlags)),
		w:              w,
	}, nil
}

func openLogWriter(fs afero.Fs, path string) (io.WriteCloser, error) {
	if _, ok := fs.(*afero.OsFs); ok {
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAgeDays,
			Compress:   true,
			LocalTime:  true,
		}, nil
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close closes the underlying log file. Later calls return the first
// result.
func (f *FileLogger) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.w.Close()
	})
	return f.closeErr
}

var _ Logger = (*FileLogger)(nil)
