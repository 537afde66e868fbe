package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nfrund/clashhub/internal/clashapi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// options holds the values shared by every subcommand.
type options struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
}

func (o *options) client() *clashapi.Client {
	return clashapi.NewClient(o.apiKey, o.apiURL, o.timeout)
}

// NewRootCmd builds the command tree. Persistent flags fall back to
// CLASHHUB_* environment variables when they are not given explicitly.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	v := viper.New()
	v.SetEnvPrefix("CLASHHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "clashhub-cli",
		Short: "Clashhub CLI tool",
		Long: `Clashhub CLI runs the checks the Clashhub site performs, from a terminal.

Available commands:
  password check   Evaluate a password against the signup policy
  tag validate     Normalize a player tag and look it up in the game API
  version          Print the CLI version

Use "clashhub-cli [command] --help" for more information about a specific command.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bindEnv(v, cmd.Flags())
		},
	}

	fs := root.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVar(&opts.apiKey, "clash-api-key", "", "Clash of Clans API token (env: CLASHHUB_CLASH_API_KEY)")
	fs.StringVar(&opts.apiURL, "clash-api-url", clashapi.DefaultBaseURL, "Clash of Clans API base URL (env: CLASHHUB_CLASH_API_URL)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for API requests (env: CLASHHUB_TIMEOUT)")

	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetVersionTemplate("clashhub-cli v{{.Version}}\n")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newPasswordCmd())
	root.AddCommand(newTagCmd(opts))
	return root
}

func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// Execute executes the root command
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
