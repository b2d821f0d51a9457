package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/utils/logger"
)

const (
	// DefaultBoltFileMode is the default file mode for the BoltDB file
	DefaultBoltFileMode = 0600

	// DefaultBoltTimeout is the default timeout for BoltDB operations
	DefaultBoltTimeout = 1 * time.Second

	// keyTimeFormat sorts lexically in time order
	keyTimeFormat = "20060102T150405.000000000Z"
)

var (
	// deploymentBucket holds the records keyed by "<name>/<time>"
	deploymentBucket = []byte("deployments")
	// indexBucket maps record ids to their key in deploymentBucket
	indexBucket = []byte("deployment-ids")
)

// BoltStore implements the DeploymentStore interface using BoltDB
type BoltStore struct {
	db      *bolt.DB
	path    string
	options *BoltOptions
}

// BoltOptions configures the BoltDB storage
type BoltOptions struct {
	// Path to the BoltDB file
	Path string
	// File mode for the BoltDB file
	FileMode os.FileMode
	// Timeout for obtaining the file lock
	Timeout time.Duration
}

// NewBoltStore creates a new BoltStore with the given options
func NewBoltStore(opts *BoltOptions) *BoltStore {
	if opts == nil {
		opts = &BoltOptions{}
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultBoltFileMode
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultBoltTimeout
	}
	return &BoltStore{
		path:    opts.Path,
		options: opts,
	}
}

// Open initializes the BoltDB database
func (s *BoltStore) Open() error {
	if s.path == "" {
		return fmt.Errorf("no history database path configured")
	}
	logger.Debug("Opening BoltDB database", zap.String("path", s.path))

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for database: %w", err)
	}

	db, err := bolt.Open(s.path, s.options.FileMode, &bolt.Options{Timeout: s.options.Timeout})
	if err != nil {
		return fmt.Errorf("failed to open BoltDB: %w", err)
	}
	s.db = db

	err = s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{deploymentBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// Close closes the BoltDB database
func (s *BoltStore) Close() error {
	if s.db != nil {
		logger.Debug("Closing BoltDB database")
		return s.db.Close()
	}
	return nil
}

func recordKey(r *DeploymentRecord) []byte {
	return []byte(r.Name + "/" + r.Time.UTC().Format(keyTimeFormat) + "/" + r.ID)
}

// Record stores a new record
func (s *BoltStore) Record(ctx context.Context, record *DeploymentRecord) error {
	fill(record)
	logger.Debug("Recording deployment", zap.String("name", record.Name), zap.String("action", string(record.Action)))

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal deployment record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		key := recordKey(record)
		if err := tx.Bucket(deploymentBucket).Put(key, data); err != nil {
			return fmt.Errorf("failed to store deployment record: %w", err)
		}
		if err := tx.Bucket(indexBucket).Put([]byte(record.ID), key); err != nil {
			return fmt.Errorf("failed to index deployment record: %w", err)
		}
		return nil
	})
}

// Get retrieves a record by its ID
func (s *BoltStore) Get(ctx context.Context, id string) (*DeploymentRecord, error) {
	var record *DeploymentRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(indexBucket).Get([]byte(id))
		if key == nil {
			return ErrRecordNotFound{ID: id}
		}
		data := tx.Bucket(deploymentBucket).Get(key)
		if data == nil {
			return ErrRecordNotFound{ID: id}
		}
		var r DeploymentRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("failed to unmarshal deployment record: %w", err)
		}
		record = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves records newest first
func (s *BoltStore) List(ctx context.Context, name string, limit int) ([]*DeploymentRecord, error) {
	var records []*DeploymentRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(deploymentBucket).Cursor()
		var prefix []byte
		if name != "" {
			prefix = []byte(name + "/")
		}
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r DeploymentRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("failed to unmarshal deployment record: %w", err)
			}
			records = append(records, &r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(records, limit), nil
}

func fill(record *DeploymentRecord) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Time.IsZero() {
		record.Time = time.Now()
	}
	record.Time = record.Time.UTC()
}

func newestFirst(records []*DeploymentRecord, limit int) []*DeploymentRecord {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Time.After(records[j].Time) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
