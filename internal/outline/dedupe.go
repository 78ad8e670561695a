package outline

import "sort"

// DefaultProximity is the offset distance under which two candidates are
// considered detections of the same physical heading.
const DefaultProximity = 5

// ReconcileCandidates sorts candidates by offset and collapses detections
// that lie within DefaultProximity of the last accepted one, keeping the
// more specific (higher) level.
func ReconcileCandidates(candidates []Candidate) []Candidate {
	return ReconcileCandidatesWithin(candidates, DefaultProximity)
}

// ReconcileCandidatesWithin is ReconcileCandidates with an explicit proximity.
// The input slice is not modified.
func ReconcileCandidatesWithin(candidates []Candidate, proximity int) []Candidate {
	if len(candidates) == 0 {
		return nil
	}
	if proximity < 0 {
		proximity = 0
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	accepted := make([]Candidate, 0, len(sorted))
	for _, c := range sorted {
		if len(accepted) == 0 {
			accepted = append(accepted, c)
			continue
		}
		last := &accepted[len(accepted)-1]
		if abs(c.Offset-last.Offset) <= proximity {
			if c.Level > last.Level {
				*last = c
			}
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
