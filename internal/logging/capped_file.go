package logging

import (
	"os"
	"sync"
)

const defaultMaxMB = 10

// cappedFile is an append-only log file that is emptied in place whenever
// the next line would take it past limit bytes. Nothing is rotated or kept.
// A closed cappedFile reopens on its next write.
type cappedFile struct {
	path  string
	limit int64

	mu   sync.Mutex
	f    *os.File
	used int64
}

func openCappedFile(path string, maxMB int) (*cappedFile, error) {
	if maxMB <= 0 {
		maxMB = defaultMaxMB
	}
	c := &cappedFile{path: path, limit: int64(maxMB) << 20}
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpen(); err != nil {
		return 0, err
	}
	if c.used+int64(len(p)) > c.limit {
		// O_APPEND places the next write at the new end.
		if err := c.f.Truncate(0); err != nil {
			return 0, err
		}
		c.used = 0
	}
	n, err := c.f.Write(p)
	c.used += int64(n)
	return n, err
}

func (c *cappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// ensureOpen needs mu held once c is shared.
func (c *cappedFile) ensureOpen() error {
	if c.f != nil {
		return nil
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	c.f, c.used = f, info.Size()
	return nil
}
