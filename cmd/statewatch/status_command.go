package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show record counts by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.records.Stats(cmd.Context())
			if err != nil {
				return err
			}

			types := make([]string, 0, len(stats))
			for recordType := range stats {
				types = append(types, recordType)
			}
			sort.Strings(types)

			total := 0
			rows := make([][]string, 0, len(types))
			for _, recordType := range types {
				rows = append(rows, []string{recordType, strconv.Itoa(stats[recordType])})
				total += stats[recordType]
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Record Type", "Count"}, rows, 2))
			fmt.Fprintf(out, "%d records total\n", total)

			health := "ok"
			if err := rt.dir.Touch(cmd.Context()); err != nil {
				health = "unreachable"
			}
			fmt.Fprintf(out, "Records DB:   %s\n", rt.records.Path())
			fmt.Fprintf(out, "Directory DB: %s (%s)\n", rt.dir.Path(), health)
			return nil
		},
	}
}
