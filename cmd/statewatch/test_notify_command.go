package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"statewatch/internal/notify"
	"statewatch/internal/record"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify <user-id>",
		Short: "Send a test notification to one user on every configured channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := rt.dir.User(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user %s not found in the directory", args[0])
			}

			msg := notify.Message{
				Subject: "Statewatch test notification",
				Body:    "Channel connectivity check. No workflow transition occurred.",
				Ref:     record.Ref{Type: "Test", Name: "test-notify"},
			}
			channels := buildChannels(rt.cfg, rt.inbox)
			if len(channels) == 0 {
				return fmt.Errorf("no notification channels are enabled")
			}

			for _, channel := range channels {
				if err := channel.Send(cmd.Context(), *user, msg); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: failed (%v)\n", channel.Name(), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: sent\n", channel.Name())
			}
			return nil
		},
	}
}
