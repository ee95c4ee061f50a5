package cas

import "time"

// SetClock replaces the clock used for creation and access times.
func SetClock(s *Store, now func() time.Time) {
	s.now = now
}
