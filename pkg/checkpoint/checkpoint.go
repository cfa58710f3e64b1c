package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/logger"
)

// Checkpoint is the durable resume state of a crawl. The JSON field names
// are kept compatible with existing checkpoint files.
type Checkpoint struct {
	// OlderThan is the cursor of the next page to fetch; nil means the
	// most recent page.
	OlderThan *string `json:"olderThan"`
	// IsFirstPost is true until a record has been written in this run-span.
	IsFirstPost bool `json:"isFirstPost"`
	// PostCounter is the number of records durably written.
	PostCounter int `json:"postCounter"`
}

// New returns the checkpoint of a crawl that has not started yet
func New() *Checkpoint {
	return &Checkpoint{IsFirstPost: true}
}

// Cursor returns the cursor as a plain string, empty for the first page
func (c *Checkpoint) Cursor() string {
	if c.OlderThan == nil {
		return ""
	}
	return *c.OlderThan
}

// StreamStarted reports whether at least one record has been written
func (c *Checkpoint) StreamStarted() bool {
	return !c.IsFirstPost
}

// Advance records a committed page: count records written and the cursor of
// the page that follows it.
func (c *Checkpoint) Advance(written int, next string) {
	if written > 0 {
		c.IsFirstPost = false
	}
	c.PostCounter += written
	c.OlderThan = &next
}

// Info summarizes a checkpoint on disk
type Info struct {
	Path          string
	Cursor        string
	RecordCount   int
	StreamStarted bool
	UpdatedAt     time.Time
}

// Age returns how long ago the checkpoint was last written
func (i *Info) Age() time.Duration {
	return time.Since(i.UpdatedAt)
}

// Manager reads and writes a single checkpoint file
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a checkpoint manager for the file at path
func NewManager(path string) *Manager {
	return &Manager{
		path:   path,
		logger: logger.GetLogger().WithField("component", "checkpoint"),
	}
}

// Path returns the checkpoint file location
func (m *Manager) Path() string {
	return m.path
}

// Load reads the checkpoint. It returns nil, nil when no checkpoint exists.
func (m *Manager) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, crawlerrors.Persistence("reading checkpoint", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, crawlerrors.Persistence("decoding checkpoint", err)
	}
	if cp.PostCounter < 0 {
		return nil, crawlerrors.Persistence("decoding checkpoint",
			fmt.Errorf("negative record count %d", cp.PostCounter))
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"path":         m.path,
		"cursor":       cp.Cursor(),
		"record_count": cp.PostCounter,
	})

	return &cp, nil
}

// Save replaces the checkpoint file atomically. A reader observes either the
// previous checkpoint or this one, never a partial write.
func (m *Manager) Save(cp *Checkpoint) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return crawlerrors.Persistence("creating checkpoint directory", err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return crawlerrors.Persistence("creating temporary checkpoint", err)
	}
	tempPath := file.Name()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cp); err != nil {
		file.Close()
		os.Remove(tempPath)
		return crawlerrors.Persistence("encoding checkpoint", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return crawlerrors.Persistence("syncing checkpoint", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return crawlerrors.Persistence("closing checkpoint", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return crawlerrors.Persistence("replacing checkpoint", err)
	}

	logger.LogCheckpoint("saved", m.path, cp.PostCounter)
	return nil
}

// Delete removes the checkpoint file. A missing file is not an error.
func (m *Manager) Delete() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return crawlerrors.Persistence("deleting checkpoint", err)
	}

	logger.LogCheckpoint("deleted", m.path, 0)
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Info returns a summary of the checkpoint on disk, or nil when none exists
func (m *Manager) Info() (*Info, error) {
	cp, err := m.Load()
	if err != nil || cp == nil {
		return nil, err
	}

	stat, err := os.Stat(m.path)
	if err != nil {
		return nil, crawlerrors.Persistence("stat checkpoint", err)
	}

	return &Info{
		Path:          m.path,
		Cursor:        cp.Cursor(),
		RecordCount:   cp.PostCounter,
		StreamStarted: cp.StreamStarted(),
		UpdatedAt:     stat.ModTime(),
	}, nil
}
