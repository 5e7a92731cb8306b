package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/crimson-sun/babylog/internal/model"
	"github.com/crimson-sun/babylog/internal/output"
)

const (
	defaultBufSize = 64 * 1024 // 64KB
	maxRotated     = 10
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// WithTruncate starts the file empty instead of appending to it.
func WithTruncate() Option {
	return func(o *Output) { o.truncate = true }
}

// Output writes events as NDJSON to a file with buffered I/O and optional
// size-based rotation. By default each run appends.
type Output struct {
	mu        sync.Mutex
	w         *bufio.Writer
	f         *os.File
	path      string
	verbosity output.Verbosity
	maxSize   int64 // 0 = no rotation
	written   int64
	bufSize   int
	truncate  bool
	count     int
}

// New creates a file output that writes NDJSON to the given path.
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		path:      path,
		verbosity: verbosity,
		bufSize:   defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if o.truncate {
		flag |= os.O_TRUNC
	}
	if err := o.open(flag); err != nil {
		return nil, err
	}
	return o, nil
}

// Write encodes the event and appends it as one line.
func (o *Output) Write(_ context.Context, event model.Event) error {
	data, err := json.Marshal(output.FormatEvent(event, o.verbosity))
	if err != nil {
		return fmt.Errorf("file output: marshal %s: %w", event.Name, err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.maxSize > 0 && o.written > 0 && o.written+int64(len(data)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := o.w.Write(data)
	o.written += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	o.count++
	return nil
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	slog.Debug("file output closed", "path", o.path, "events", o.count, "bytes", o.written)
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

func (o *Output) open(flag int) error {
	f, err := os.OpenFile(o.path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	o.written = info.Size()
	return nil
}

// rotate moves the current file to {path}.1, shifting older copies up
// to {path}.10, and reopens an empty file.
func (o *Output) rotate() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}
	for i := maxRotated - 1; i >= 1; i-- {
		// Missing generations are expected.
		_ = os.Rename(fmt.Sprintf("%s.%d", o.path, i), fmt.Sprintf("%s.%d", o.path, i+1))
	}
	if err := os.Rename(o.path, o.path+".1"); err != nil {
		return err
	}
	return o.open(os.O_CREATE | os.O_WRONLY | os.O_TRUNC)
}
