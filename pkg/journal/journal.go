// Package journal persists a record of every composed call sequence handed to
// the execution layer, so a crashed process can tell which submissions were in
// flight and reconcile them against the chain on restart.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/satstack/swapkit/pkg/swap"
)

// Status is the lifecycle state of one recorded submission.
type Status string

const (
	StatusPending   Status = "pending"   // calls composed, nothing sent yet
	StatusSubmitted Status = "submitted" // transactions broadcast, awaiting confirmation
	StatusConfirmed Status = "confirmed" // all transactions confirmed
	StatusFailed    Status = "failed"    // submission aborted
)

// Entry records one call sequence and its submission progress. Entries are
// keyed by the quote generation that produced them, so a superseded quote
// never overwrites a newer entry's file.
type Entry struct {
	ID         string      `json:"id"`
	Generation uint64      `json:"generation"`
	Wallet     string      `json:"wallet"`
	Calls      []swap.Call `json:"calls"`
	TxHashes   []string    `json:"tx_hashes,omitempty"`
	Status     Status      `json:"status"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Journal stores entries as one JSON file each under a directory. Writes are
// atomic via temp file and rename.
type Journal struct {
	dir string
	mu  sync.Mutex
}

// New creates a journal rooted at dir.
func New(dir string) *Journal {
	return &Journal{dir: dir}
}

// Record creates and persists a fresh pending entry for a call sequence.
func (j *Journal) Record(id, wallet string, generation uint64, calls []swap.Call) (*Entry, error) {
	now := time.Now().UTC()
	entry := &Entry{
		ID:         id,
		Generation: generation,
		Wallet:     wallet,
		Calls:      calls,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := j.Save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Save persists an entry, stamping UpdatedAt.
func (j *Journal) Save(entry *Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.dir, 0700); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	entry.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	path := j.path(entry.ID)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write journal temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename journal temp file: %w", err)
	}
	return nil
}

// Load reads one entry; a missing entry is (nil, nil), not an error.
func (j *Journal) Load(id string) (*Entry, error) {
	data, err := os.ReadFile(j.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse journal entry: %w", err)
	}
	return &entry, nil
}

// SetSubmitted records the broadcast transaction hashes.
func (j *Journal) SetSubmitted(id string, txHashes []string) error {
	return j.update(id, func(e *Entry) {
		e.TxHashes = txHashes
		e.Status = StatusSubmitted
	})
}

// SetConfirmed marks an entry fully confirmed.
func (j *Journal) SetConfirmed(id string) error {
	return j.update(id, func(e *Entry) {
		e.Status = StatusConfirmed
	})
}

// SetFailed records a submission failure.
func (j *Journal) SetFailed(id string, cause error) error {
	return j.update(id, func(e *Entry) {
		e.Status = StatusFailed
		if cause != nil {
			e.Error = cause.Error()
		}
	})
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (j *Journal) Delete(id string) error {
	if err := os.Remove(j.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return nil
}

// Pending lists every entry that has not reached a terminal state, for
// reconciliation on startup.
func (j *Journal) Pending() ([]*Entry, error) {
	entries, err := j.list()
	if err != nil {
		return nil, err
	}
	var open []*Entry
	for _, e := range entries {
		if e.Status == StatusPending || e.Status == StatusSubmitted {
			open = append(open, e)
		}
	}
	return open, nil
}

// CleanupOld deletes entries untouched for longer than maxAge and reports how
// many were removed.
func (j *Journal) CleanupOld(maxAge time.Duration) (int, error) {
	entries, err := j.list()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	deleted := 0
	for _, e := range entries {
		if now.Sub(e.UpdatedAt) > maxAge {
			if err := j.Delete(e.ID); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

func (j *Journal) list() ([]*Entry, error) {
	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	var entries []*Entry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		entry, err := j.Load(f.Name()[:len(f.Name())-5])
		if err != nil {
			continue // skip unreadable entries
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (j *Journal) update(id string, fn func(*Entry)) error {
	entry, err := j.Load(id)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("no journal entry %s to update", id)
	}
	fn(entry)
	return j.Save(entry)
}

func (j *Journal) path(id string) string {
	return filepath.Join(j.dir, id+".json")
}
