package search

import (
	"testing"

	"github.com/hyperjump/souq/internal/models"
)

func ids(cands []*models.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}

func cand(id string) *models.Candidate {
	return &models.Candidate{ID: id, Name: id}
}

func TestMerge(t *testing.T) {
	a1 := cand("a")
	a2 := &models.Candidate{ID: "a", Name: "later copy"}
	lists := [][]*models.Candidate{
		{a1, cand("b")},
		{cand("c"), a2, nil, {ID: ""}},
		{cand("b"), cand("d")},
	}

	got := Merge(0, lists...)
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Merge = %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("Merge[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if got[0] != a1 {
		t.Error("first occurrence of an id should win")
	}

	if capped := Merge(3, lists...); len(capped) != 3 || capped[2].ID != "c" {
		t.Errorf("Merge(3) = %v", ids(capped))
	}
	if empty := Merge(10); len(empty) != 0 {
		t.Errorf("Merge() = %v, want empty", ids(empty))
	}
}

func TestTopNScored(t *testing.T) {
	results := []models.ScoredCandidate{{Rank: 1}, {Rank: 2}, {Rank: 3}}
	if got := TopNScored(results, 2); len(got) != 2 || got[1].Rank != 2 {
		t.Errorf("TopNScored(2) = %v", got)
	}
	if got := TopNScored(results, 0); len(got) != 3 {
		t.Errorf("TopNScored(0) should keep everything, got %d", len(got))
	}
	if got := TopNScored(results, 10); len(got) != 3 {
		t.Errorf("TopNScored(10) = %d results", len(got))
	}
}
