package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sells-group/restaurant-cli/internal/catalog"
	"github.com/sells-group/restaurant-cli/internal/model"
)

// formatRestaurantList writes a tabular list of restaurants to out.
func formatRestaurantList(out io.Writer, records []model.Restaurant) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tREGION\tREVIEWS\tADDRESS")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t-------\t-------")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncate(r.Name, 30),
			truncate(r.Category, 20),
			r.Region,
			r.ReviewCount,
			truncate(r.Address, 40),
		)
	}
	_ = w.Flush()
}

// formatNearest writes restaurants with their distance from the query point.
func formatNearest(out io.Writer, ranked []catalog.Ranked) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tREGION\tDISTANCE")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t--------")
	for _, r := range ranked {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s km\n",
			truncate(r.Name, 30),
			truncate(r.Category, 20),
			r.Region,
			strconv.FormatFloat(r.DistanceKM, 'f', 2, 64),
		)
	}
	_ = w.Flush()
}

// formatRecommendations writes ranked candidates with their score breakdown.
func formatRecommendations(out io.Writer, ranked []catalog.Candidate) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME\tREGION\tSCORE\tPOPULARITY\tEQUALITY\tAVG MIN\tSPREAD")
	_, _ = fmt.Fprintln(w, "-\t----\t------\t-----\t----------\t--------\t-------\t------")
	for i, c := range ranked {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%d\t%d\t%d\t%d\n",
			i+1,
			truncate(c.Name, 30),
			c.Region,
			c.Score.Total,
			c.Score.Popularity,
			c.Score.Equality,
			c.Score.AvgTravelMin,
			c.Score.TravelSpread,
		)
	}
	_ = w.Flush()
}

// formatRegionCounts writes per-region totals in the given order.
func formatRegionCounts(out io.Writer, order []string, counts map[string]int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tCOUNT")
	total := 0
	for _, r := range order {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", r, counts[r])
		total += counts[r]
	}
	_, _ = fmt.Fprintf(w, "Total\t%d\n", total)
	_ = w.Flush()
}

func writeIndentedJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// truncate shortens s to n runes for table display.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
