package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/souq/internal/models"
)

func sampleOutput() *SearchOutput {
	return &SearchOutput{
		SearchResponse: &models.SearchResponse{
			RequestID: "req-1",
			Query:     "فستان سواريه",
			Language:  "ar",
			QueryTime: 42,
			Total:     3,
			Pooled:    10,
			Results: []*models.ScoredCandidate{
				{Candidate: &models.Candidate{ID: "7", Name: "فستان سواريه"}, Score: 4.5, Rank: 1},
			},
			Strategies: []models.StrategyReport{
				{Name: "popular", Candidates: 4},
				{Name: "keywords", Error: "rate limit exceeded"},
			},
		},
		Blocks: []string{"لقيتلك منتج واحد.", "1. فستان سواريه"},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleOutput(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded SearchOutput
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.SearchResponse == nil || decoded.RequestID != "req-1" || decoded.QueryTime != 42 {
		t.Errorf("decoded response = %+v", decoded.SearchResponse)
	}
	if len(decoded.Blocks) != 2 || decoded.Blocks[1] != "1. فستان سواريه" {
		t.Errorf("decoded blocks = %v", decoded.Blocks)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Candidate.ID != "7" {
		t.Errorf("decoded results = %+v", decoded.Results)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleOutput(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"لقيتلك منتج واحد.",
		"1. فستان سواريه",
		"1 of 3 matching products in 42ms (10 candidates pooled)",
		"strategy keywords failed: rate limit exceeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "strategy popular") {
		t.Error("successful strategies should not be listed")
	}
}

func TestWriteSearchResults_TextWithoutResponse(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, &SearchOutput{Blocks: []string{"Sorry"}}, OutputText); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "Sorry" {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchOutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
