// Package cli provides CLI utilities for souq.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/souq/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is the rendered chat blocks (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// SearchOutput is a search response together with its rendered text blocks. It has
// the same JSON shape as the server's search response.
type SearchOutput struct {
	*models.SearchResponse
	Blocks []string `json:"blocks"`
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, out *SearchOutput, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		writeSearchResultsText(w, out)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, out *SearchOutput) {
	fmt.Fprintln(w)
	for i, block := range out.Blocks {
		if i > 0 {
			fmt.Fprintln(w, "─────────────────────────────────────────────────────────")
		}
		fmt.Fprintln(w, block)
	}
	if out.SearchResponse == nil {
		return
	}
	resp := out.SearchResponse
	fmt.Fprintf(w, "\n%d of %d matching products in %dms (%d candidates pooled)\n",
		len(resp.Results), resp.Total, resp.QueryTime, resp.Pooled)
	for _, s := range resp.Strategies {
		if s.Error != "" {
			fmt.Fprintf(w, "  strategy %s failed: %s\n", s.Name, s.Error)
		}
	}
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(out *SearchOutput) {
	_ = WriteSearchResults(os.Stdout, out, OutputText)
}
