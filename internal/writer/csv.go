package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

// appendFile is the part of *os.File the CSV sink uses.
type appendFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Sync() error
	Truncate(size int64) error
	Close() error
}

// CSVSink appends snapshots to a single CSV file.
type CSVSink struct {
	path   string
	logger *slog.Logger

	mu         sync.Mutex
	f          appendFile
	w          *csv.Writer
	needHeader bool
	closed     bool
	stats      Stats
}

// OpenCSV opens (or creates) the CSV file at path for appending.
// Parent directories are created as needed.
func OpenCSV(path string, logger *slog.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv: %w", err)
	}

	return &CSVSink{
		path:       path,
		logger:     logger,
		f:          f,
		w:          newCSVWriter(f),
		needHeader: info.Size() == 0,
	}, nil
}

// Path returns the file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one row, then flushes and fsyncs before returning.
// A failed write is cut back off the file so the next row starts clean.
func (s *CSVSink) Append(_ context.Context, snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	info, err := s.f.Stat()
	if err != nil {
		s.stats.Errors++
		return fmt.Errorf("stat csv: %w", err)
	}
	offset := info.Size()

	if err := s.write(snap); err != nil {
		s.stats.Errors++
		s.rollback(offset, err)
		// bufio keeps failing after the first error; start over on the same file.
		s.w = newCSVWriter(s.f)
		return err
	}

	s.stats.Appends++
	return nil
}

func (s *CSVSink) write(snap model.Snapshot) error {
	header := s.needHeader
	if header {
		if err := s.w.Write(Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if err := s.w.Write(row(snap)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync csv: %w", err)
	}

	if header {
		s.needHeader = false
		s.logger.Info("created csv file", "path", s.path)
	}
	return nil
}

// rollback truncates the file to offset, dropping a partial row.
func (s *CSVSink) rollback(offset int64, cause error) {
	if err := s.f.Truncate(offset); err != nil {
		s.logger.Error("csv file may end in a partial row",
			"path", s.path,
			"offset", offset,
			"write_error", cause,
			"error", err,
		)
		return
	}
	s.logger.Warn("discarded partial csv row",
		"path", s.path,
		"offset", offset,
		"error", cause,
	)
}

// Stats returns current counters.
func (s *CSVSink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close closes the file. Further appends return ErrSinkClosed.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

// newCSVWriter uses CRLF line endings so rows match files written by
// earlier recorder versions.
func newCSVWriter(f io.Writer) *csv.Writer {
	w := csv.NewWriter(f)
	w.UseCRLF = true
	return w
}
