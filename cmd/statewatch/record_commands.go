package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"statewatch/internal/record"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage watched records",
	}
	cmd.AddCommand(newRecordAddCommand(ctx))
	cmd.AddCommand(newRecordListCommand(ctx))
	cmd.AddCommand(newRecordShowCommand(ctx))
	cmd.AddCommand(newRecordRemoveCommand(ctx))
	cmd.AddCommand(newRecordRecipientsCommand(ctx))
	return cmd
}

func newRecordRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <type> <name>",
		Short: "Delete a record and its extra recipients",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			removed, err := rt.records.Remove(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("record %s/%s not found", args[0], args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s/%s\n", args[0], args[1])
			return nil
		},
	}
}

func newRecordAddCommand(ctx *commandContext) *cobra.Command {
	var ownerFlag string
	var setFlags []string
	cmd := &cobra.Command{
		Use:   "add <type> <name>",
		Short: "Create a record",
		Args:  cobra.ExactArgs(2),
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

			rec := &record.Record{
				Type:   args[0],
				Name:   args[1],
				Owner:  strings.TrimSpace(ownerFlag),
				Fields: fields,
			}
			stored, err := rt.records.Create(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", stored.Ref())
			return nil
		},
	}
	cmd.Flags().StringVar(&ownerFlag, "owner", "", "Owning user identity")
	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Initial field value as key=value (repeatable)")
	return cmd
}

func newRecordListCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			records, err := rt.records.List(cmd.Context(), strings.TrimSpace(typeFlag))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.Type,
					rec.Name,
					rec.Owner,
					rec.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Type", "Name", "Owner", "Updated"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "Only list records of this type")
	return cmd
}

func newRecordShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type> <name>",
		Short: "Show one record with its fields and extra recipients",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			rec, err := rt.records.GetByRef(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("record %s/%s not found", args[0], args[1])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (owner: %s)\n", rec.Ref(), valueOrDash(rec.Owner))

			keys := make([]string, 0, len(rec.Fields))
			for key := range rec.Fields {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, rec.Fields[key]})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))

			if len(rec.ExtraRecipients) > 0 {
				roles := make([]string, 0, len(rec.ExtraRecipients))
				for _, entry := range rec.ExtraRecipients {
					roles = append(roles, entry.Role)
				}
				fmt.Fprintf(out, "Extra recipients: %s\n", strings.Join(roles, ", "))
			}
			return nil
		},
	}
}

func newRecordRecipientsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipients",
		Short: "Manage a record's extra notification recipients",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <type> <name> <role>",
		Short: "Attach a role that is always notified for this record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.records.AddExtraRecipient(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s/%s\n", args[2], args[0], args[1])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <type> <name> <role>",
		Short: "Detach an extra recipient role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			removed, err := rt.records.RemoveExtraRecipient(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("role %s is not an extra recipient of %s/%s", args[2], args[0], args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s/%s\n", args[2], args[0], args[1])
			return nil
		},
	})
	return cmd
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
