package domain

import "fmt"

// Summary counts per-item outcomes of one stage run.
type Summary struct {
	Processed int
	// Updated counts items that already existed and were overwritten in place.
	Updated int
	Skipped int
	Failed  int
}

func (s Summary) String() string {
	return fmt.Sprintf("processed=%d updated=%d skipped=%d failed=%d", s.Processed, s.Updated, s.Skipped, s.Failed)
}
