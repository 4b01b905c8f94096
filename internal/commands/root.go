// Package commands implements the lldpinventory command line
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lldpinventory/internal/logging"
	"lldpinventory/internal/version"
)

// Viper keys
const (
	keyInventory    = "inventory"
	keyLogLevel     = "log.level"
	keyLogFormat    = "log.format"
	keyRefreshCache = "refresh_cache"
	keyOutputFormat = "output.format"
)

// EnvPrefix prefixes environment overrides, e.g. LLDPINVENTORY_LOG_LEVEL
const EnvPrefix = "LLDPINVENTORY"

type app struct {
	v      *viper.Viper
	stderr io.Writer
}

// NewRootCommand builds the command tree. stderr receives logs.
func NewRootCommand(stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stderr: stderr}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault(keyLogLevel, "warn")
	a.v.SetDefault(keyLogFormat, logging.FormatAuto)
	a.v.SetDefault(keyOutputFormat, "json")

	var (
		listFlag bool
		hostFlag string
	)

	rootCmd := &cobra.Command{
		Use:   "lldpinventory",
		Short: "Build an Ansible inventory from a switch's LLDP neighbor table",
		Long: `lldpinventory connects to a switch over SSH, reads its LLDP neighbor
table and classifies every neighbor with a fleet MAC address as a BMC or
a host. The result is printed as an Ansible inventory.

It can also be used directly as an executable inventory:
  ansible-inventory -i lldpinventory --list`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case hostFlag != "":
				return a.runHost(cmd, hostFlag)
			case listFlag:
				return a.runList(cmd, "json")
			default:
				return cmd.Help()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("inventory", "i", "", "inventory source file (default: search $LLDPINVENTORY_CONFIG, ./lldp.yml, XDG and /etc)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (auto, terminal, text, json)")
	flags.Bool("refresh-cache", false, "ignore a cached inventory and query the switch")

	// These should never fail as flags are defined above
	_ = a.v.BindPFlag(keyInventory, flags.Lookup("inventory"))        //nolint:errcheck
	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))         //nolint:errcheck
	_ = a.v.BindPFlag(keyLogFormat, flags.Lookup("log-format"))       //nolint:errcheck
	_ = a.v.BindPFlag(keyRefreshCache, flags.Lookup("refresh-cache")) //nolint:errcheck

	rootCmd.Flags().BoolVar(&listFlag, "list", false, "print the whole inventory as JSON")
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "print the variables of one host as JSON")

	rootCmd.AddCommand(a.listCommand())
	rootCmd.AddCommand(a.hostCommand())
	rootCmd.AddCommand(a.graphCommand())
	rootCmd.AddCommand(versionCommand())

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
	rootCmd.SetErr(stderr)

	return rootCmd
}

// Execute runs the command line with ctx
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCommand(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}

func (a *app) logger() (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  a.v.GetString(keyLogLevel),
		Format: a.v.GetString(keyLogFormat),
		Writer: a.stderr,
	})
}

func versionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.String())

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(out, "\nDetails:\n")
				fmt.Fprintf(out, "  Version:    %s\n", info.Version)
				fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
				fmt.Fprintf(out, "  Built:      %s\n", info.BuildTime)
				fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
				fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
			}
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "verbose version output")
	return cmd
}
