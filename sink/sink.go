// Package sink provides [netsim.Application] implementations that
// persist or collect the bytes a TCP connection delivers.
package sink

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kbpontius/lab4-CS460"
)

// FileSink writes received bytes to a file under Dir, one file per
// flow, matching transfer.py's file_title+str(unique_file_id)+extension
// naming. I/O errors are logged, not propagated: a failed write must
// never stop the simulation core from advancing simulated time.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	logger netsim.Logger
}

// NewFileSink creates (or truncates) dir/name and returns a sink that
// appends every ReceiveData call to it.
func NewFileSink(dir, name string, logger netsim.Logger) (*FileSink, error) {
	if logger == nil {
		logger = &netsim.NullLogger{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: mkdir %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("sink: create %s: %w", name, err)
	}
	return &FileSink{file: f, logger: logger}, nil
}

// ReceiveData implements [netsim.Application].
func (s *FileSink) ReceiveData(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(data); err != nil {
		s.logger.Warnf("sink: write %s: %v", s.file.Name(), err)
	}
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sink: sync %s: %w", s.file.Name(), err)
	}
	return s.file.Close()
}

// BufferSink is an in-memory [netsim.Application] for collecting
// transferred bytes without touching disk.
type BufferSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// ReceiveData implements [netsim.Application].
func (s *BufferSink) ReceiveData(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(data)
}

// Bytes returns a copy of everything received so far.
func (s *BufferSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out
}
