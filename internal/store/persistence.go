// Package store keeps the launch history used to rank entries by use.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// SchemaVersion is the current persistence schema version.
const SchemaVersion = 1

// Persistence stores launch records.
type Persistence interface {
	// Load reads every launch in append order.
	Load() ([]model.Launch, error)

	// Append adds a launch.
	Append(l model.Launch) error

	// Rewrite replaces the stored launches (used after prune).
	Rewrite(ls []model.Launch) error

	// Close releases file handles.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"appdrawer_schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence implements Persistence with one JSON object per line.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence opens path, creating it and its directory if needed.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{path: path, file: file}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return p, nil
}

func (p *JSONLPersistence) writeHeader() error {
	data, err := json.Marshal(schemaHeader{SchemaVersion: SchemaVersion, CreatedAt: time.Now().Unix()})
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all launches. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]model.Launch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}
	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	launches, err := readLaunches(p.file)
	if err != nil {
		return launches, err
	}

	if _, err := p.file.Seek(0, io.SeekEnd); err != nil {
		return launches, err
	}
	return launches, nil
}

func readLaunches(r io.Reader) ([]model.Launch, error) {
	var launches []model.Launch
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if first {
			first = false
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var l model.Launch
		if err := json.Unmarshal(line, &l); err != nil {
			continue
		}
		if l.Validate() == nil {
			launches = append(launches, l)
		}
	}

	if err := scanner.Err(); err != nil {
		return launches, fmt.Errorf("error reading file: %w", err)
	}
	return launches, nil
}

// Append adds a launch and syncs the file.
func (p *JSONLPersistence) Append(l model.Launch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	if _, err := p.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return p.file.Sync()
}

// Rewrite replaces the file through a temporary file and rename.
func (p *JSONLPersistence) Rewrite(ls []model.Launch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	tmpPath := p.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	if err := enc.Encode(schemaHeader{SchemaVersion: SchemaVersion, CreatedAt: time.Now().Unix()}); err != nil {
		_ = tmp.Close()
		return err
	}
	for _, l := range ls {
		if err := enc.Encode(l); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}

	if p.file != nil {
		_ = p.file.Close()
	}
	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		p.file = nil
		return err
	}
	p.file = file
	return nil
}

// Close releases the file handle.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}
