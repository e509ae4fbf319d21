// Package cache decides whether a project's build script must be recompiled.
//
// Staleness is driven by content alone:
//
//  1. The build script is hashed with SHA256 (Fingerprint)
//  2. The digest is compared against .talon/build_cache.txt (IsStale)
//  3. After a successful compile the new digest replaces the record (Persist)
//
// A missing or corrupt record only means "rebuild"; a record that cannot be
// written is an error. The compiled builder itself is never hashed or
// timestamp-checked.
//
// History keeps an informational log of builds in a BoltDB file next to the
// record. It is never consulted when deciding staleness.
package cache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// bucketName is the BoltDB bucket name for history entries
const bucketName = "builds"

// History stores one Entry per build in BoltDB
type History struct {
	db   *bbolt.DB
	path string
}

// OpenHistory opens or creates the history database at path
func OpenHistory(path string) (*History, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	return &History{
		db:   db,
		path: path,
	}, nil
}

// Close closes the history database
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}

	return nil
}

// Record appends entry and assigns its sequence number
func (h *History) Record(entry *Entry) error {
	err := h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		entry.Seq = seq
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put(seqKey(seq), data)
	})
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}

	return nil
}

// Last returns the most recent entry, or nil if there is none
func (h *History) Last() (*Entry, error) {
	var entry *Entry
	err := h.db.View(func(tx *bbolt.Tx) error {
		_, data := tx.Bucket([]byte(bucketName)).Cursor().Last()
		if data == nil {
			return nil
		}

		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Stats summarizes all recorded builds
func (h *History) Stats() (Stats, error) {
	var stats Stats

	err := h.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, data []byte) error {
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}

			stats.Builds++
			if entry.Compiled {
				stats.Compiles++
			}

			if !entry.Success {
				stats.Failures++
			}

			return nil
		})
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// Clear removes all history entries
func (h *History) Clear() error {
	return h.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
