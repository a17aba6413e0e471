package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var classifyStdin bool

var classifyCmd = &cobra.Command{
	Use:   "classify <address>...",
	Short: "Print the region for each address",
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier, err := buildClassifier()
		if err != nil {
			return err
		}

		addresses := args
		if classifyStdin {
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					addresses = append(addresses, line)
				}
			}
			if err := sc.Err(); err != nil {
				return eris.Wrap(err, "classify: read stdin")
			}
		}
		if len(addresses) == 0 {
			return eris.New("classify: at least one address is required")
		}

		out := cmd.OutOrStdout()
		for _, a := range addresses {
			if _, err := fmt.Fprintf(out, "%s\t%s\n", a, classifier.Classify(a)); err != nil {
				return eris.Wrap(err, "classify: write")
			}
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyStdin, "stdin", false, "also read one address per line from stdin")
	rootCmd.AddCommand(classifyCmd)
}
