package store

import (
	"github.com/iamnilotpal/ignite-kv/internal/codec"
	"github.com/iamnilotpal/ignite-kv/internal/segment"
	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
)

// compactLocked implements spec.md §4.4.1. Callers must hold writeMu; this
// store's single-writer model means compaction serializes with Set/Remove
// for its whole duration, but never blocks concurrent Get calls since those
// never take writeMu — a deliberate simplification of the spec's
// brief-critical-section wording.
//
// Compacted records are appended into the segment rolloverLocked just
// created, not into a separately-allocated target segment: every new
// segment id is handed out by rolloverLocked alone (from activeID+1), so
// s.activeID always tracks the one segment actually open for writes and a
// later rollover or compaction can never collide with an id this pass
// already created.
func (s *Store) compactLocked() error {
	s.compacting.Store(true)
	defer s.compacting.Store(false)

	s.segMu.Lock()
	oldIDs := make([]uint64, 0, len(s.segments))
	for id := range s.segments {
		oldIDs = append(oldIDs, id)
	}
	s.segMu.Unlock()

	if err := s.rolloverLocked(); err != nil {
		return err
	}

	var copiedBytes int64

	type relocated struct {
		key string
		pos segment.Pos
	}
	var moved []relocated

	var rangeErr error
	s.idx.Range(func(key string, pos segment.Pos) bool {
		seg, err := s.segmentFor(pos.FileID)
		if err != nil {
			rangeErr = err
			return false
		}

		buf, err := seg.ReadAt(pos.Offset, pos.Length)
		if err != nil {
			rangeErr = err
			return false
		}

		rec, err := codec.Decode(buf)
		if err != nil {
			rangeErr = err
			return false
		}

		set, ok := rec.(codec.Set)
		if !ok {
			rangeErr = kerrors.NewIndexError(nil, kerrors.ErrorCodeIndexCorrupted,
				"index points at a tombstone during compaction").
				WithKey(key).WithSegmentID(uint16(pos.FileID))
			return false
		}

		newPos, err := s.appendLocked(codec.Set{Key: key, Value: set.Value})
		if err != nil {
			rangeErr = err
			return false
		}
		copiedBytes += newPos.Length

		s.segMu.RLock()
		active := s.segments[s.activeID]
		s.segMu.RUnlock()
		if active.Size() >= s.opts.SegmentOptions.MaxBytes {
			if err := s.rolloverLocked(); err != nil {
				rangeErr = err
				return false
			}
		}

		moved = append(moved, relocated{key: key, pos: newPos})
		return true
	})
	if rangeErr != nil {
		return rangeErr
	}

	for _, m := range moved {
		s.idx.Set(m.key, m.pos)
	}

	s.segMu.Lock()
	for _, id := range oldIDs {
		seg, ok := s.segments[id]
		if !ok {
			continue
		}
		delete(s.segments, id)
		if err := seg.Remove(s.dir); err != nil {
			s.segMu.Unlock()
			return err
		}
	}
	s.segMu.Unlock()

	s.staleBytes.Store(0)
	s.liveBytes.Store(copiedBytes)

	s.log.Infow("compaction complete", "removedSegments", len(oldIDs), "liveBytes", copiedBytes)
	return nil
}
