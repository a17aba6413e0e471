package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/restaurant-cli/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show the active district to region mapping",
	RunE: func(cmd *cobra.Command, _ []string) error {
		classifier, err := buildClassifier()
		if err != nil {
			return err
		}
		formatMapping(cmd.OutOrStdout(), classifier)
		return nil
	},
}

// formatMapping writes the rules in match order, fallback last.
func formatMapping(out io.Writer, c *region.Classifier) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tDISTRICT\tREGION")
	_, _ = fmt.Fprintln(w, "-\t--------\t------")
	for i, r := range c.Mapping() {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.District, r.Region)
	}
	_, _ = fmt.Fprintf(w, "*\t(no match)\t%s\n", c.Fallback())
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
