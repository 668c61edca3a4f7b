package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"statewatch/internal/record"
)

func newSaveCommand(ctx *commandContext) *cobra.Command {
	var ownerFlag string
	var setFlags []string
	cmd := &cobra.Command{
		Use:   "save <type> <name>",
		Short: "Save a record through the full detection and notification cycle",
		Long: "Save loads (or creates) the record, applies the given field values, persists it,\n" +
			"and announces any workflow state transition the save produced.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFieldPairs(setFlags)
			if err != nil {
				return err
			}
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			ref := record.Ref{Type: args[0], Name: args[1]}
			saved, err := rt.engine.Save(cmd.Context(), ref, func(rec *record.Record) error {
				if owner := strings.TrimSpace(ownerFlag); owner != "" {
					rec.Owner = owner
				}
				for key, value := range fields {
					rec.SetField(key, value)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", saved.Ref())
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerFlag, "owner", "", "Set the owning user identity")
	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Field value as key=value (repeatable)")
	return cmd
}
