package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInboxCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Read in-app notifications",
	}
	cmd.AddCommand(newInboxListCommand(ctx))
	cmd.AddCommand(newInboxReadCommand(ctx))
	return cmd
}

func newInboxListCommand(ctx *commandContext) *cobra.Command {
	var unreadFlag bool
	cmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's notifications, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.inbox == nil {
				return fmt.Errorf("the in-app channel is disabled in configuration")
			}

			entries, err := rt.inbox.Inbox(cmd.Context(), args[0], unreadFlag)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				read := ""
				if !entry.Read {
					read = "*"
				}
				rows = append(rows, []string{
					entry.ID,
					read,
					entry.Ref.String(),
					entry.Subject,
					entry.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "New", "Record", "Subject", "When"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreadFlag, "unread", false, "Only show unread notifications")
	return cmd
}

func newInboxReadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.inbox == nil {
				return fmt.Errorf("the in-app channel is disabled in configuration")
			}

			marked, err := rt.inbox.MarkRead(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !marked {
				return fmt.Errorf("notification %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read\n", args[0])
			return nil
		},
	}
}
