package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/logger"
	"postcrawler/pkg/models"
)

const (
	openMarker  = "[\n"
	separator   = ",\n"
	indent      = "  "
	closeMarker = "\n]"
)

// Writer appends records to a JSON array file
type Writer struct {
	path    string
	file    *os.File
	records int
	logger  logger.Logger
}

// NewWriter creates a writer for the file at path. Nothing is opened until
// OpenIfNeeded is called.
func NewWriter(path string) *Writer {
	return &Writer{
		path:   path,
		logger: logger.GetLogger().WithField("component", "output"),
	}
}

// Path returns the output file location
func (w *Writer) Path() string {
	return w.path
}

// Records returns the number of records in the file, committed or not
func (w *Writer) Records() int {
	return w.records
}

// OpenIfNeeded opens the output file for appending. With fresh set the file
// is created or truncated and the opening marker is written. Otherwise the
// existing file is reopened and cut back to exactly committed records, so
// that records written after the last checkpoint are not duplicated.
func (w *Writer) OpenIfNeeded(fresh bool, committed int) error {
	if w.file != nil {
		return nil
	}

	if fresh || committed == 0 {
		return w.create()
	}

	file, err := os.OpenFile(w.path, os.O_RDWR, 0)
	if err != nil {
		return crawlerrors.Persistence("reopening output", err)
	}

	offset, err := committedOffset(file, committed)
	if err != nil {
		file.Close()
		return crawlerrors.Persistence("scanning output", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return crawlerrors.Persistence("stat output", err)
	}
	if dropped := stat.Size() - offset; dropped > 0 {
		w.logger.WarnWithFields("Discarding uncommitted output", map[string]interface{}{
			"path":      w.path,
			"committed": committed,
			"bytes":     dropped,
		})
	}

	if err := file.Truncate(offset); err != nil {
		file.Close()
		return crawlerrors.Persistence("truncating output", err)
	}
	if _, err := file.Seek(offset, 0); err != nil {
		file.Close()
		return crawlerrors.Persistence("seeking output", err)
	}

	w.file = file
	w.records = committed
	w.logger.InfoWithFields("Output reopened", map[string]interface{}{
		"path":      w.path,
		"committed": committed,
	})
	return nil
}

func (w *Writer) create() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return crawlerrors.Persistence("creating output directory", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return crawlerrors.Persistence("creating output", err)
	}
	if _, err := file.WriteString(openMarker); err != nil {
		file.Close()
		return crawlerrors.Persistence("writing output header", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return crawlerrors.Persistence("syncing output header", err)
	}

	w.file = file
	w.records = 0
	w.logger.DebugWithFields("Output created", map[string]interface{}{"path": w.path})
	return nil
}

// committedOffset returns the byte offset just past the committed-th record
func committedOffset(file *os.File, committed int) (int64, error) {
	dec := json.NewDecoder(file)

	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("reading opening marker: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("output does not start with an array")
	}

	for i := 0; i < committed; i++ {
		if !dec.More() {
			return 0, fmt.Errorf("output holds %d records, checkpoint expects %d", i, committed)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return 0, fmt.Errorf("output holds %d readable records, checkpoint expects %d: %w", i, committed, err)
		}
	}

	return dec.InputOffset(), nil
}

// Append writes one record. isFirst suppresses the separator for the first
// record of the array.
func (w *Writer) Append(rec models.Record, isFirst bool) error {
	if w.file == nil {
		return crawlerrors.Persistence("appending record", fmt.Errorf("output %s is not open", w.path))
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return crawlerrors.Persistence("encoding record", err)
	}

	var buf bytes.Buffer
	if !isFirst {
		buf.WriteString(separator)
	}
	buf.WriteString(indent)
	buf.Write(data)

	if _, err := w.file.Write(buf.Bytes()); err != nil {
		return crawlerrors.Persistence("appending record", err)
	}
	w.records++
	return nil
}

func encodeRecord(rec models.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(indent, indent)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Sync flushes appended records to stable storage
func (w *Writer) Sync() error {
	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return crawlerrors.Persistence("syncing output", err)
	}
	return nil
}

// Finalize writes the closing marker and closes the file. The result is a
// complete JSON document.
func (w *Writer) Finalize() error {
	if w.file == nil {
		return crawlerrors.Persistence("finalizing output", fmt.Errorf("output %s is not open", w.path))
	}

	if _, err := w.file.WriteString(closeMarker); err != nil {
		w.Close()
		return crawlerrors.Persistence("writing closing marker", err)
	}
	if err := w.Sync(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Close closes the file without the closing marker, leaving it resumable
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return crawlerrors.Persistence("closing output", err)
	}
	return nil
}
