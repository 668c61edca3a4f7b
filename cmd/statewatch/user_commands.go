package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"statewatch/internal/directory"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the user directory",
	}
	cmd.AddCommand(newUserAddCommand(ctx))
	cmd.AddCommand(newUserListCommand(ctx))
	cmd.AddCommand(newUserRoleCommand(ctx))
	return cmd
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	var nameFlag, emailFlag string
	var roleFlags []string
	var disabledFlag bool
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Create or replace a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			user := directory.User{
				ID:       args[0],
				FullName: strings.TrimSpace(nameFlag),
				Email:    strings.TrimSpace(emailFlag),
				Enabled:  !disabledFlag,
				Roles:    roleFlags,
			}
			if err := rt.dir.CreateUser(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved user %s\n", user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nameFlag, "name", "", "Full name")
	cmd.Flags().StringVar(&emailFlag, "email", "", "Email address")
	cmd.Flags().StringArrayVar(&roleFlags, "role", nil, "Role held by the user (repeatable)")
	cmd.Flags().BoolVar(&disabledFlag, "disabled", false, "Create the user disabled")
	return cmd
}

func newUserListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List directory users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			users, err := rt.dir.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, user := range users {
				rows = append(rows, []string{
					user.ID,
					user.FullName,
					user.Email,
					yesNo(user.Enabled),
					strings.Join(user.Roles, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Email", "Enabled", "Roles"}, rows))
			return nil
		},
	}
}

func newUserRoleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "role <id> <role>",
		Short: "Grant a role to an existing user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.dir.AssignRole(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s\n", args[1], args[0])
			return nil
		},
	}
}

func newEmployeeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employee-to-user links",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "link <employee-id> <user-id>",
		Short: "Link an employee identifier to a directory user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.dir.LinkEmployee(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s to %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}
