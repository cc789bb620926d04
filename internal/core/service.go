package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/fastaframes/internal/logging"
)

// ContextCheckInterval is how many records are processed between checks
// for a cancelled context.
const ContextCheckInterval = 100

// Service converts between FASTA text and tables.
type Service struct {
	wrapWidth int
	logger    *slog.Logger
	onWarning WarningHandler
}

// Option configures a Service.
type Option func(*Service)

// WithWrapWidth sets the residues per line used by ToText and WriteText.
func WithWrapWidth(width int) Option {
	return func(s *Service) {
		s.wrapWidth = width
	}
}

// WithLogger sets the logger. By default the request-scoped logger from
// the context is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWarnings registers a handler called for every warning, in addition
// to logging and collection.
func WithWarnings(h WarningHandler) Option {
	return func(s *Service) {
		s.onWarning = h
	}
}

// NewService creates a new Service instance.
func NewService(opts ...Option) *Service {
	s := &Service{wrapWidth: DefaultWrapWidth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WrapWidth returns the configured sequence wrap width.
func (s *Service) WrapWidth() int {
	return s.wrapWidth
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.FromContext(ctx)
}

// ReadEntries parses FASTA from source, which is a file path (string), an
// io.Reader or a []byte. Warnings are logged and returned; a source that
// cannot be opened or read is a *SourceError and no entries are returned.
func (s *Service) ReadEntries(ctx context.Context, source any) ([]Entry, []Warning, error) {
	r, path, closeFn, err := openSource(source)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	logger := s.log(ctx)
	if path != "" {
		logger = logger.With("path", path)
	}
	logWarning := LogWarnings(logger)

	var warnings []Warning
	dec := NewDecoder(WithWarningHandler(func(w Warning) {
		warnings = append(warnings, w)
		logWarning(w)
		if s.onWarning != nil {
			s.onWarning(w)
		}
	}))

	counter := NewCountingReader(r, 0)
	var entries []Entry
	for e, err := range dec.Entries(counter) {
		if err != nil {
			var se *SourceError
			if errors.As(err, &se) && se.Path == "" {
				se.Path = path
			}
			return nil, warnings, err
		}
		entries = append(entries, e)
		if len(entries)%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, warnings, fmt.Errorf("read entries: %w", err)
			}
		}
	}

	logger.Debug("parsed fasta",
		"records", len(entries),
		"warnings", len(warnings),
		"bytes", counter.BytesRead,
	)
	return entries, warnings, nil
}

// ToTable converts a FASTA source to a table. Besides the sources accepted
// by ReadEntries, a []Entry is tabulated directly.
func (s *Service) ToTable(ctx context.Context, source any) (*Table, []Warning, error) {
	if entries, ok := source.([]Entry); ok {
		return EntriesToTable(entries), nil, nil
	}

	entries, warnings, err := s.ReadEntries(ctx, source)
	if err != nil {
		return nil, warnings, err
	}
	return EntriesToTable(entries), warnings, nil
}

// ToText renders source as FASTA. source is a *Table, a Table or a
// []Entry. With an empty destination the text is returned; otherwise it
// is written to the destination path and "" is returned.
func (s *Service) ToText(ctx context.Context, source any, destination string) (string, error) {
	entries, err := entriesFrom(source)
	if err != nil {
		return "", err
	}

	if destination == "" {
		return FormatEntries(entries, s.wrapWidth), nil
	}

	f, err := os.Create(destination)
	if err != nil {
		return "", &SourceError{Op: "create", Path: destination, Err: err}
	}
	if err := WriteEntries(f, entries, s.wrapWidth); err != nil {
		f.Close()
		return "", &SourceError{Op: "write", Path: destination, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &SourceError{Op: "write", Path: destination, Err: err}
	}

	s.log(ctx).Debug("wrote fasta", "path", destination, "records", len(entries))
	return "", nil
}

// WriteText streams source as FASTA to w.
func (s *Service) WriteText(ctx context.Context, w io.Writer, source any) error {
	entries, err := entriesFrom(source)
	if err != nil {
		return err
	}

	fw := NewWriter(w, s.wrapWidth)
	for i, e := range entries {
		if err := fw.Write(e); err != nil {
			return &SourceError{Op: "write", Err: err}
		}
		if (i+1)%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("write text: %w", err)
			}
		}
	}
	if err := fw.Flush(); err != nil {
		return &SourceError{Op: "write", Err: err}
	}
	return nil
}

// openSource resolves a FASTA source to a reader. closeFn is never nil.
func openSource(source any) (r io.Reader, path string, closeFn func() error, err error) {
	noop := func() error { return nil }

	switch src := source.(type) {
	case string:
		f, err := os.Open(src)
		if err != nil {
			return nil, src, noop, &SourceError{Op: "open", Path: src, Err: err}
		}
		return bufio.NewReader(f), src, f.Close, nil
	case []byte:
		return bytes.NewReader(src), "", noop, nil
	case io.Reader:
		return src, "", noop, nil
	case nil:
		return nil, "", noop, &SourceError{Op: "open", Err: errors.New("no source given")}
	default:
		return nil, "", noop, fmt.Errorf("unsupported fasta source %T", source)
	}
}

func entriesFrom(source any) ([]Entry, error) {
	switch src := source.(type) {
	case *Table:
		return TableToEntries(src), nil
	case Table:
		return TableToEntries(&src), nil
	case []Entry:
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported table source %T", source)
	}
}

// ParseString is a convenience for parsing FASTA held in memory.
func (s *Service) ParseString(ctx context.Context, text string) ([]Entry, []Warning, error) {
	return s.ReadEntries(ctx, strings.NewReader(text))
}
