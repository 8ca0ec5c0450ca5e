// Package report provides ProgressSink implementations for persisting
// validation output incrementally.
package report

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/user/kubevalid/pkg/engine"
)

// FileSink appends report fragments to a file, syncing after every write so
// a crash mid-run leaves a valid, readable prefix of the report on disk.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink creates a sink targeting path. The file is created on the
// first Append.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("appending to report file: %w", err)
	}
	// Durability before the next batch starts.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing report file: %w", err)
	}
	return nil
}

func (s *FileSink) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path)
	return err == nil
}

var _ engine.ProgressSink = (*FileSink)(nil)

// MemorySink collects appended fragments in memory. Used when no output file
// is configured and in tests.
type MemorySink struct {
	mu       sync.Mutex
	appended []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, text)
	return nil
}

func (s *MemorySink) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appended) > 0
}

// Contents returns everything appended so far as one string.
func (s *MemorySink) Contents() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.appended, "")
}

// Fragments returns a copy of the individual appends, in order.
func (s *MemorySink) Fragments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.appended))
	copy(out, s.appended)
	return out
}

var _ engine.ProgressSink = (*MemorySink)(nil)
