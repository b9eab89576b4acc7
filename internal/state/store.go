// Package state persists scan progress so an interrupted scan can be
// resumed.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sitesentry/sitesentry/internal/frontier"
	"github.com/sitesentry/sitesentry/pkg/findings"
)

// PageRecord mirrors one visited page for resume purposes.
type PageRecord struct {
	URL    string `json:"url"`
	Depth  int    `json:"depth"`
	Status int    `json:"status"`
}

// ScanState is everything needed to resume a scan where it left off.
type ScanState struct {
	SeedURL      string                `json:"seed_url"`
	StartedAt    time.Time             `json:"started_at"`
	SavedAt      time.Time             `json:"saved_at"`
	Visited      []string              `json:"visited"`
	Pending      []frontier.Target     `json:"pending"`
	Records      []PageRecord          `json:"records"`
	Pages        []findings.PageResult `json:"pages"`
	PagesVisited int                   `json:"pages_visited"`
}

// Store persists and restores ScanState.
type Store interface {
	Save(state *ScanState) error
	// Load returns nil, nil when no state has been saved.
	Load() (*ScanState, error)
	Close() error
}

var (
	bucketState = []byte("state")
	keyState    = []byte("scan_state")
)

// BoltStore keeps scan state in a bbolt database file.
type BoltStore struct {
	db   *bolt.DB
	path string
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens or creates the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db, path: path}, nil
}

// Save writes the state, stamping SavedAt.
func (s *BoltStore) Save(state *ScanState) error {
	state.SavedAt = time.Now()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put(keyState, data)
	})
}

// Load reads the saved state, returning nil when none exists.
func (s *BoltStore) Load() (*ScanState, error) {
	var state ScanState
	var found bool

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data := b.Get(keyState)
		if data == nil {
			return nil
		}

		found = true
		return json.Unmarshal(data, &state)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &state, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// MemoryStore keeps scan state in memory, for tests and one-shot runs.
type MemoryStore struct {
	state *ScanState
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(state *ScanState) error {
	state.SavedAt = time.Now()
	s.state = state
	return nil
}

func (s *MemoryStore) Load() (*ScanState, error) {
	return s.state, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
