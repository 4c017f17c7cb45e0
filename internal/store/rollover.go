package store

import "github.com/iamnilotpal/ignite-kv/internal/segment"

// rolloverLocked implements spec.md §4.4.2: seal the active segment, create
// <active_id+1>.log, and make it the new active segment. Callers must hold
// writeMu.
func (s *Store) rolloverLocked() error {
	s.segMu.Lock()
	defer s.segMu.Unlock()

	oldID := s.activeID
	newID := oldID + 1

	old := s.segments[oldID]
	old.Seal()

	newSeg, err := segment.Create(s.dir, newID)
	if err != nil {
		return err
	}

	s.segments[newID] = newSeg
	s.activeID = newID

	s.log.Infow("segment rollover", "from", oldID, "to", newID, "path", segmentPath(s.dir, newID))
	return nil
}
