// Package csvstore persists submissions to a single CSV file with a header
// row. Writes are appended in place and serialized by a mutex.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/utafrali/FeedbackAI/pkg/errors"
	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// Columns is the fixed header of the submissions file.
var Columns = []string{"timestamp", "rating", "review", "ai_response", "ai_summary", "recommended_actions"}

// Store implements repository.SubmissionRepository on a CSV file.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store backed by path. The file and its parent directory are
// created on first append.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append writes sub as a new row and returns the stored copy with its
// timestamp set.
func (s *Store) Append(ctx context.Context, sub *domain.Submission) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := *sub
	stored.Stamp(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendRow(toRow(&stored)); err != nil {
		return nil, apperrors.Storage("append submission", err)
	}
	return &stored, nil
}

func (s *Store) appendRow(row []string) (err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", s.path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	} else if err := ensureTrailingNewline(f, info.Size()); err != nil {
		return err
	}

	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return f.Sync()
}

// ensureTrailingNewline terminates a last line left open by another writer
// so the next row does not merge into it.
func ensureTrailingNewline(f *os.File, size int64) error {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("read last byte: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	_, err := f.Write([]byte{'\n'})
	return err
}

// ReadAll returns all stored submissions in file order.
func (s *Store) ReadAll(ctx context.Context) ([]domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.readAll()
	if err != nil {
		return nil, apperrors.Storage("read submissions", err)
	}
	return subs, nil
}

func (s *Store) readAll() ([]domain.Submission, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Submission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := indexColumns(header)

	subs := []domain.Submission{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return subs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		sub, err := fromRow(row, idx)
		if err != nil {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		subs = append(subs, sub)
	}
}

// Check verifies that the data directory is writable.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func toRow(sub *domain.Submission) []string {
	return []string{
		sub.Timestamp,
		strconv.Itoa(sub.Rating),
		sub.Review,
		sub.AIResponse,
		sub.AISummary,
		sub.RecommendedActions,
	}
}

// indexColumns maps each known column to its position in header, -1 when absent.
func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(Columns))
	for _, c := range Columns {
		idx[c] = -1
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := idx[h]; ok {
			idx[h] = i
		}
	}
	return idx
}

func fromRow(row []string, idx map[string]int) (domain.Submission, error) {
	field := func(name string) string {
		i := idx[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rating, err := parseRating(field("rating"))
	if err != nil {
		return domain.Submission{}, err
	}

	return domain.Submission{
		Timestamp:          field("timestamp"),
		Rating:             rating,
		Review:             field("review"),
		AIResponse:         field("ai_response"),
		AISummary:          field("ai_summary"),
		RecommendedActions: field("recommended_actions"),
	}, nil
}

// parseRating accepts "4" as well as float forms such as "4.0".
func parseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid rating %q", s)
	}
	return int(f), nil
}
