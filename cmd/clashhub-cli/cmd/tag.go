package cmd

import (
	"errors"
	"fmt"

	"github.com/nfrund/clashhub/internal/clashapi"
	"github.com/spf13/cobra"
)

var errTagNotFound = errors.New("player tag not found")

func newTagCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Player tag helpers",
	}
	cmd.AddCommand(newTagValidateCmd(opts))
	return cmd
}

func newTagValidateCmd(opts *options) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "validate <tag>",
		Short: "Normalize a player tag and look it up in the game API",
		Long: `Normalize a player tag and check that the player exists.

The leading '#' is optional and the letter O is read as zero.

Examples:
  clashhub-cli tag validate '#2PP'
  clashhub-cli tag validate 2pp --offline     # format check only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			tag, ok := clashapi.NormalizeTag(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", clashapi.ErrInvalidTag, args[0])
			}
			fmt.Fprintf(out, "Normalized tag: #%s\n", tag)
			if offline {
				return nil
			}

			exists, err := opts.client().PlayerExists(cmd.Context(), tag)
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}
			if !exists {
				return errTagNotFound
			}
			fmt.Fprintln(out, "Player found")
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "only check the tag format")
	return cmd
}
