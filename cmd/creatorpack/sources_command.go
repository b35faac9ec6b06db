package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"creatorpack/internal/sources"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List known source adapters and the configured allow-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry := sources.NewRegistry(nil, cfg.Sources.Allowed)

			if jsonOut {
				type sourceEntry struct {
					Kind    string `json:"kind"`
					Allowed bool   `json:"allowed"`
				}
				entries := make([]sourceEntry, 0)
				for _, kind := range registry.Kinds() {
					entries = append(entries, sourceEntry{Kind: kind, Allowed: registry.Allowed(kind)})
				}
				return writeJSON(cmd, entries)
			}

			rows := make([][]string, 0)
			for _, kind := range registry.Kinds() {
				rows = append(rows, []string{kind, yesNo(registry.Allowed(kind))})
			}
			table := renderTable(
				[]string{"Source", "Allowed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			)
			fmt.Fprint(cmd.OutOrStdout(), table)
			fmt.Fprintln(cmd.OutOrStdout(), "Local files are always accepted; remote sources require an allow-list entry.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit sources as JSON")
	return cmd
}
