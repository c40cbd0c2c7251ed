package history

import (
	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

// Captured snapshots are deep copies: restoring hands the diagram a fresh
// value each time, so later model mutations can never reach back into a
// command's captured state.

func cloneSwimlane(s *diagram.Swimlane) *diagram.Swimlane {
	c := *s
	c.Outcomes = append([]int64(nil), s.Outcomes...)
	return &c
}

func cloneOutcome(o *diagram.Outcome) *diagram.Outcome {
	c := *o
	return &c
}

func cloneBlob(b *diagram.ScopeBlob) *diagram.ScopeBlob {
	c := *b
	c.Points = append([]geometry.Point(nil), b.Points...)
	return &c
}
