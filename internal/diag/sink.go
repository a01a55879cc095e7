// Package diag records per-file and per-directory failures to a side-channel
// log without interrupting a conversion run.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultLogFile is the diagnostic log name used when none is configured.
const DefaultLogFile = "parsing_errors.log"

// Kind classifies a recorded failure.
type Kind string

const (
	KindParse   Kind = "parse"
	KindRead    Kind = "read"
	KindListDir Kind = "list_dir"
	KindMkdir   Kind = "mkdir"
	KindWrite   Kind = "write"
	KindWatch   Kind = "watch"
)

// Sink is an append-only diagnostic log. It is safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	logger   *logrus.Logger
	closer   io.Closer
	path     string
	failures map[Kind]int
}

// Open creates (or truncates) the log file at path.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostic log %s: %w", path, err)
	}
	s := New(f)
	s.closer = f
	s.path = path
	return s, nil
}

// New returns a sink writing to w. The caller keeps ownership of w.
func New(w io.Writer) *Sink {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Sink{
		logger:   logger,
		failures: make(map[Kind]int),
	}
}

// Discard returns a sink that keeps tallies but writes nothing.
func Discard() *Sink {
	return New(io.Discard)
}

// Path returns the log file path, or "" for sinks not opened from a file.
func (s *Sink) Path() string {
	return s.path
}

// Failure records a failure for path and bumps the tally for kind.
func (s *Sink) Failure(kind Kind, path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[kind]++
	s.logger.WithFields(logrus.Fields{
		"kind":  string(kind),
		"path":  path,
		"cause": errString(err),
	}).Error("failed")
}

// Warn records a non-failure anomaly for path.
func (s *Sink) Warn(path, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithField("path", path).Warn(msg)
}

// Info records a progress message.
func (s *Sink) Info(msg string, fields map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithFields(logrus.Fields(fields)).Info(msg)
}

// Failures returns the total number of failures recorded.
func (s *Sink) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.failures {
		total += n
	}
	return total
}

// FailuresOf returns the number of failures recorded for kind.
func (s *Sink) FailuresOf(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[kind]
}

// Close closes the underlying file, if the sink owns one.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
