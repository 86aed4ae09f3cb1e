package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nfrund/semsearch/internal/domain"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ResultsTable writes ranked results as a table.
func ResultsTable(w io.Writer, results []domain.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "RANK\tSCORE\tID\tTITLE")
	fmt.Fprintln(tw, "----\t-----\t--\t-----")

	if len(results) == 0 {
		fmt.Fprintln(tw, "No results found")
		return
	}
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\n", i+1, r.Score, r.Image.ID, truncateString(r.Image.Title, 50))
	}
}

// ResultsJSON writes ranked results as indented JSON.
func ResultsJSON(w io.Writer, query string, results []domain.Result) error {
	if results == nil {
		results = []domain.Result{}
	}
	out := struct {
		Query   string          `json:"query"`
		Results []domain.Result `json:"results"`
		Count   int             `json:"count"`
	}{Query: query, Results: results, Count: len(results)}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// ImagesTable writes catalog images as a table.
func ImagesTable(w io.Writer, images []domain.Image) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTITLE\tTAGS")
	fmt.Fprintln(tw, "--\t-----\t----")
	for _, img := range images {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", img.ID, truncateString(img.Title, 40), strings.Join(img.Tags, ","))
	}
}

// truncateString truncates s to maxLen characters, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
