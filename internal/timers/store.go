package timers

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pepperonas/mrx3k1-sub002/internal/kv"
	"github.com/pepperonas/mrx3k1-sub002/internal/timectl"
)

// BucketName is the KV namespace holding local timer records.
const BucketName = "local_timers"

// Store persists local timers, one record per timer keyed by id. The
// owning backend is never stored; it is re-derived from the kind on load.
type Store struct {
	bucket kv.Bucket
}

// NewStore creates a timer store over the given bucket.
func NewStore(bucket kv.Bucket) *Store {
	return &Store{bucket: bucket}
}

// Load reads all persisted timers. Records that no longer decode into a
// locally managed timer are skipped with a warning rather than failing
// the whole load.
func (s *Store) Load() ([]timectl.TimeControl, error) {
	keys, err := s.bucket.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list timer keys: %w", err)
	}

	timers := make([]timectl.TimeControl, 0, len(keys))
	for _, key := range keys {
		var tc timectl.TimeControl
		found, err := s.bucket.Get(key, &tc)
		if err != nil {
			log.Warn().Err(err).Str("id", key).Msg("Skipping undecodable timer record")
			continue
		}
		if !found {
			continue
		}
		if tc.Backend() != timectl.BackendLocal {
			log.Warn().Str("id", key).Str("kind", string(tc.Kind)).Msg("Skipping non-local timer record")
			continue
		}
		tc.ID = key
		timers = append(timers, tc)
	}

	return timers, nil
}

// SaveAll makes the bucket reflect exactly the given timer set: records
// for removed timers are deleted, all remaining timers are rewritten.
func (s *Store) SaveAll(timers map[string]*timectl.TimeControl) error {
	keys, err := s.bucket.Keys()
	if err != nil {
		return fmt.Errorf("failed to list timer keys: %w", err)
	}

	for _, key := range keys {
		if _, ok := timers[key]; !ok {
			if _, err := s.bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to remove timer %s: %w", key, err)
			}
		}
	}

	for id, tc := range timers {
		if err := s.bucket.Store(id, tc); err != nil {
			return fmt.Errorf("failed to persist timer %s: %w", id, err)
		}
	}

	return nil
}
