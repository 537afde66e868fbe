package cmd

import (
	"errors"
	"fmt"

	"github.com/nfrund/clashhub/internal/authform"
	"github.com/spf13/cobra"
)

var errPasswordRejected = errors.New("password does not meet the policy")

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password policy helpers",
	}
	cmd.AddCommand(newPasswordCheckCmd())
	return cmd
}

func newPasswordCheckCmd() *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "check <password>",
		Short: "Evaluate a password against the signup policy",
		Long: `Evaluate a password against the signup policy and print each requirement.

Examples:
  clashhub-cli password check 'Abcdefghijk1!'
  clashhub-cli password check 'Abcdefghijk1!' --confirm 'Abcdefghijk1!'

The command exits non-zero when a requirement is unmet or the
confirmation does not match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := args[0]
			out := cmd.OutOrStdout()

			for _, req := range authform.PasswordRequirements(password) {
				mark := "✗"
				if req.Satisfied {
					mark = "✓"
				}
				fmt.Fprintf(out, "%s %s\n", mark, req.Text)
			}

			if cmd.Flags().Changed("confirm") {
				if failure := authform.ValidateNewPassword(password, confirm); failure != nil {
					fmt.Fprintln(out, failure.Message)
					return errPasswordRejected
				}
				fmt.Fprintln(out, "Passwords match")
				return nil
			}

			if !authform.PasswordAcceptable(password) {
				return errPasswordRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "confirmation to compare against the password")
	return cmd
}
