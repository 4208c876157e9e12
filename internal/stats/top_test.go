package stats

import (
	"testing"

	"github.com/verte-zerg/toptens/internal/model"
)

func TestRank(t *testing.T) {
	ranked := Rank(map[string]int{"NURSE": 1, "ENGINEER": 2, "ANALYST": 1})
	want := []model.Count{{Key: "ENGINEER", Count: 2}, {Key: "ANALYST", Count: 1}, {Key: "NURSE", Count: 1}}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(ranked))
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Fatalf("unexpected order: %v", ranked)
		}
	}
}

func TestRankTieBreak(t *testing.T) {
	ranked := Rank(map[string]int{"ZEBRA": 1, "ALPHA": 1})
	if ranked[0].Key != "ALPHA" || ranked[1].Key != "ZEBRA" {
		t.Fatalf("unexpected order: %v", ranked)
	}
}

func TestRankIsSorted(t *testing.T) {
	counts := map[string]int{}
	for i, key := range []string{"CA", "NY", "TX", "WA", "NJ", "IL", "MA", "PA", "GA", "FL", "MI", "OH"} {
		counts[key] = (i * 7) % 5
	}
	ranked := Rank(counts)
	for i := 1; i < len(ranked); i++ {
		a, b := ranked[i-1], ranked[i]
		if a.Count < b.Count || (a.Count == b.Count && a.Key > b.Key) {
			t.Fatalf("entries %d and %d out of order: %v, %v", i-1, i, a, b)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	if ranked := Rank(nil); len(ranked) != 0 {
		t.Fatalf("expected empty ranking, got %v", ranked)
	}
}

func TestTop(t *testing.T) {
	ranked := []model.Count{{Key: "A", Count: 3}, {Key: "B", Count: 2}, {Key: "C", Count: 1}}
	if got := Top(ranked, 2); len(got) != 2 || got[1].Key != "B" {
		t.Fatalf("unexpected top 2: %v", got)
	}
	if got := Top(ranked, 10); len(got) != 3 {
		t.Fatalf("expected all 3 entries, got %d", len(got))
	}
	if got := Top(ranked, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}
