package speech

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// ErrClipReleased is returned when a released clip is read.
var ErrClipReleased = errors.New("clip already released")

// Clip holds synthesized audio until it has been delivered. Audio stays in
// memory up to the spool limit and spills to a temp file beyond it; Release
// removes that file.
type Clip struct {
	Format    string
	Duration  int64 // milliseconds
	RequestID string

	mu       sync.Mutex
	limit    int
	mem      bytes.Buffer
	file     *os.File
	path     string
	size     int
	released bool
}

// NewClip returns an empty clip. spoolBytes <= 0 keeps everything in memory.
func NewClip(format string, spoolBytes int) *Clip {
	return &Clip{Format: format, limit: spoolBytes}
}

// Write appends audio, spilling to disk once the limit is crossed.
func (c *Clip) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return 0, ErrClipReleased
	}

	if c.path == "" && c.limit > 0 && c.mem.Len()+len(p) > c.limit {
		if err := c.spill(); err != nil {
			return 0, err
		}
	}

	var (
		n   int
		err error
	)
	if c.file != nil {
		n, err = c.file.Write(p)
	} else {
		n, err = c.mem.Write(p)
	}
	c.size += n
	return n, err
}

func (c *Clip) spill() error {
	f, err := os.CreateTemp("", "caregpt-clip-*."+c.Format)
	if err != nil {
		return fmt.Errorf("create clip spool: %w", err)
	}
	if _, err := f.Write(c.mem.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write clip spool: %w", err)
	}
	c.mem.Reset()
	c.file = f
	c.path = f.Name()
	return nil
}

// Len is the number of audio bytes written.
func (c *Clip) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Spooled reports whether the clip lives in a temp file.
func (c *Clip) Spooled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path != ""
}

// Path returns the spool file, or "" for in-memory clips.
func (c *Clip) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Open returns a reader over the whole clip. Writing after Open is not
// supported.
func (c *Clip) Open() (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, ErrClipReleased
	}
	if c.path == "" {
		return io.NopCloser(bytes.NewReader(c.mem.Bytes())), nil
	}
	if c.file != nil {
		if err := c.file.Close(); err != nil {
			return nil, fmt.Errorf("close clip spool: %w", err)
		}
		c.file = nil
	}
	return os.Open(c.path)
}

// Bytes reads the whole clip into memory.
func (c *Clip) Bytes() ([]byte, error) {
	r, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Release drops the audio and deletes any spool file. Failures are logged
// and otherwise ignored. Release is safe to call more than once.
func (c *Clip) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return
	}
	c.released = true
	c.mem.Reset()

	if c.file != nil {
		_ = c.file.Close()
		c.file = nil
	}
	if c.path != "" {
		if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Debug("clip spool cleanup failed", "component", "speech", "path", c.path, "error", err)
		}
		c.path = ""
	}
}
