package outline

import "testing"

func TestReconcileCandidates_CollapsesToHigherLevel(t *testing.T) {
	tests := []struct {
		name  string
		in    []Candidate
		level int
		tag   string
	}{
		{
			name:  "later is more specific",
			in:    []Candidate{{Offset: 10, Level: 1, Tag: "roman"}, {Offset: 13, Level: 3, Tag: "sub"}},
			level: 3, tag: "sub",
		},
		{
			name:  "earlier is more specific",
			in:    []Candidate{{Offset: 13, Level: 1, Tag: "roman"}, {Offset: 10, Level: 3, Tag: "sub"}},
			level: 3, tag: "sub",
		},
		{
			name:  "same offset equal level keeps first",
			in:    []Candidate{{Offset: 4, Level: 2, Tag: "a"}, {Offset: 4, Level: 2, Tag: "b"}},
			level: 2, tag: "a",
		},
		{
			name:  "exactly at threshold",
			in:    []Candidate{{Offset: 0, Level: 2, Tag: "sec"}, {Offset: 5, Level: 3, Tag: "item"}},
			level: 3, tag: "item",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileCandidates(tt.in)
			if len(got) != 1 {
				t.Fatalf("expected 1 candidate, got %d: %+v", len(got), got)
			}
			if got[0].Level != tt.level {
				t.Errorf("expected level %d, got %d", tt.level, got[0].Level)
			}
			if got[0].Tag != tt.tag {
				t.Errorf("expected tag %q, got %q", tt.tag, got[0].Tag)
			}
		})
	}
}

func TestReconcileCandidates_KeepsDistantHeadings(t *testing.T) {
	in := []Candidate{
		{Offset: 40, Level: 2, Tag: "sec"},
		{Offset: 0, Level: 1, Tag: "part"},
		{Offset: 6, Level: 3, Tag: "sub"},
	}
	got := ReconcileCandidates(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for i, want := range []int{0, 6, 40} {
		if got[i].Offset != want {
			t.Errorf("candidate %d: expected offset %d, got %d", i, want, got[i].Offset)
		}
	}
	if in[0].Offset != 40 {
		t.Error("expected input slice to be left unsorted")
	}
}

func TestReconcileCandidatesWithin_CustomProximity(t *testing.T) {
	in := []Candidate{{Offset: 0, Level: 1}, {Offset: 8, Level: 2}}
	if got := ReconcileCandidatesWithin(in, 10); len(got) != 1 {
		t.Errorf("expected 1 candidate at proximity 10, got %d", len(got))
	}
	if got := ReconcileCandidatesWithin(in, 0); len(got) != 2 {
		t.Errorf("expected 2 candidates at proximity 0, got %d", len(got))
	}
}

func TestReconcileCandidates_Empty(t *testing.T) {
	if got := ReconcileCandidates(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
