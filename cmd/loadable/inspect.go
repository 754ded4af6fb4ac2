package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loadable/pkg/hydrate"
	"github.com/vango-dev/loadable/pkg/loadable"
)

func inspectCmd() *cobra.Command {
	var (
		payloadID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <page.html>",
		Short: "List the loadables a rendered page asks the client to preload",
		Long: `Read a saved server-rendered page and print the names in its
preload payload, one per line.

Examples:
  loadable inspect index.html
  curl -s localhost:8080/ > page.html && loadable inspect page.html --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := hydrate.ParseDocument(f)
			if err != nil {
				return err
			}
			names, found, err := hydrate.Extract(doc, payloadID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no payload with id %q in %s", payloadID, args[0])
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(names)
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadID, "id", loadable.PayloadID, "Payload element id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the names as a JSON array")

	return cmd
}
