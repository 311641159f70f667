package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// prompt reads one line from the command's input when value is empty
func prompt(cmd *cobra.Command, reader *bufio.Reader, label, value string) string {
	if value != "" {
		return value
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			email = prompt(cmd, reader, "Email", email)
			password = prompt(cmd, reader, "Password", password)

			cred, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", cred.UserID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			name = prompt(cmd, reader, "Name", name)
			email = prompt(cmd, reader, "Email", email)
			password = prompt(cmd, reader, "Password", password)

			if err := a.auth.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created, you can now run `tokokita login`")
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, at least 8 characters")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
