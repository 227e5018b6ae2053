// winpekit builds, customizes and deploys Windows PE build trees by
// sequencing the deployment kit's imaging and disk tools.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/winpekit/winpekit/internal/config"
	"github.com/winpekit/winpekit/internal/dism"
	"github.com/winpekit/winpekit/internal/winexec"
)

const version = "0.3.0"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	verbose    bool
	dryRun     bool
	configPath string
}

// loadConfig resolves the tool roots; commands that do not need them
// never call this.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	return config.Load(g.configPath)
}

func (g *globalOptions) dismClient() *dism.Client {
	return dism.NewClient(winexec.Exec{})
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "winpekit",
		Short:         "Build and deploy Windows PE boot media",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if global.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "enable debug output")
	cmd.PersistentFlags().BoolVar(&global.dryRun, "dry-run", false, "validate and report every step without changing anything")
	cmd.PersistentFlags().StringVar(&global.configPath, "config", "", "path to a winpekit.toml config file")

	cmd.AddCommand(newCreateCommand(global))
	cmd.AddCommand(newValidateCommand(global))
	cmd.AddCommand(newAddPackagesCommand(global))
	cmd.AddCommand(newAddModulesCommand(global))
	cmd.AddCommand(newWriteMediaCommand(global))
	cmd.AddCommand(newWriteISOCommand(global))
	cmd.AddCommand(newMountCommand(global))
	cmd.AddCommand(newUnmountCommand(global))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the winpekit version",
		Run: func(*cobra.Command, []string) {
			fmt.Println("winpekit " + version)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
