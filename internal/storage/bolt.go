package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"gitlab.bluewillows.net/root/failoverctl/internal/probe"
	"gitlab.bluewillows.net/root/failoverctl/internal/txlog"
)

var (
	bucketResults     = []byte("probe_results")
	bucketTransitions = []byte("transitions")
	bucketLedger      = []byte("failover_ledger")
)

// BoltSink is a bbolt-backed Sink. Each bucket stores JSON-marshaled values
// keyed by a monotonically increasing, zero-padded sequence number so
// bucket iteration returns entries in insertion order.
type BoltSink struct {
	db *bolt.DB
}

// NewBoltSink opens (creating if absent) a bbolt database under dataDir and
// ensures its buckets exist.
func NewBoltSink(dataDir string) (*BoltSink, error) {
	dbPath := filepath.Join(dataDir, "failoverctl.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketResults, bucketTransitions, bucketLedger} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltSink{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BoltSink) Close() error {
	return s.db.Close()
}

func sequenceKey(b *bolt.Bucket) []byte {
	seq, _ := b.NextSequence()
	return []byte(fmt.Sprintf("%020d", seq))
}

// SaveResult persists a single ProbeResult.
func (s *BoltSink) SaveResult(_ context.Context, r probe.Result) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(b), data)
	})
}

// GetResultsSince returns all ProbeResults at or after since, optionally
// filtered to a single provider ID (empty string means all providers).
func (s *BoltSink) GetResultsSince(_ context.Context, since time.Time, providerID string) ([]probe.Result, error) {
	var out []probe.Result
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		return b.ForEach(func(_, v []byte) error {
			var r probe.Result
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if r.Timestamp.Before(since) {
				return nil
			}
			if providerID != "" && r.ProviderID != providerID {
				return nil
			}
			out = append(out, r)
			return nil
		})
	})
	return out, err
}

// SaveTransition appends a TransitionRecord.
func (s *BoltSink) SaveTransition(_ context.Context, t txlog.TransitionRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransitions)
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(b), data)
	})
}

// LoadTransitions returns the most recent limit TransitionRecords, oldest
// first. limit <= 0 returns every record.
func (s *BoltSink) LoadTransitions(_ context.Context, limit int) ([]txlog.TransitionRecord, error) {
	var out []txlog.TransitionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransitions)
		return b.ForEach(func(_, v []byte) error {
			var t txlog.TransitionRecord
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// SaveLedgerEntry appends a FailoverLedger timestamp.
func (s *BoltSink) SaveLedgerEntry(_ context.Context, at time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLedger)
		data, err := json.Marshal(at)
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(b), data)
	})
}

// LoadLedger returns every ledger entry at or after since, sorted
// ascending.
func (s *BoltSink) LoadLedger(_ context.Context, since time.Time) ([]time.Time, error) {
	var out []time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLedger)
		return b.ForEach(func(_, v []byte) error {
			var t time.Time
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			if t.Before(since) {
				return nil
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
