// Package journal persists mirror run outcomes in an embedded bbolt database.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
)

var bucketRuns = []byte("runs")

// BboltJournal implements interfaces.Journal using bbolt. Records are keyed
// by start time plus run ID so a cursor scan yields chronological order.
type BboltJournal struct {
	db *bolt.DB
}

// New opens or creates a bbolt database at the given path.
func New(dbPath string) (*BboltJournal, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, goerr.Wrap(err, "failed to create journal directory", goerr.V("dir", dir))
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open journal database", goerr.V("path", dbPath))
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	}); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to create runs bucket")
	}

	return &BboltJournal{db: db}, nil
}

// Close releases the bbolt database.
func (j *BboltJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append stores a finished sync record.
func (j *BboltJournal) Append(_ context.Context, record *model.SyncRecord) error {
	if record.ID == "" {
		return goerr.New("sync record has no ID")
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal sync record: %w", err)
		}
		return tx.Bucket(bucketRuns).Put(recordKey(record), data)
	})
}

// List returns the most recent records, newest first.
func (j *BboltJournal) List(_ context.Context, limit int, failedOnly bool) ([]*model.SyncRecord, error) {
	var records []*model.SyncRecord

	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec model.SyncRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal sync record %s: %w", k, err)
			}
			if failedOnly && rec.Status != model.StatusFailed {
				continue
			}
			records = append(records, &rec)
			if limit > 0 && len(records) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan journal")
	}

	return records, nil
}

// keyTimeLayout is fixed width, RFC3339Nano drops trailing zeros and would
// break lexicographic ordering.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z"

// recordKey builds a lexicographically sortable key from start time and ID.
func recordKey(record *model.SyncRecord) []byte {
	return []byte(record.StartedAt.UTC().Format(keyTimeLayout) + "/" + record.ID)
}
