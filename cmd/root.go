// Package cmd implements the recolor command line.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmuldo/recolor/version"
)

// app is the state shared by every subcommand of one root command.
type app struct {
	v       *viper.Viper
	log     *logrus.Logger
	cfgFile string
	verbose bool
	logJSON bool
}

// NewRootCmd builds the recolor command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "recolor",
		Short: "Maps the colours of an image onto a fixed palette",
		Long: `recolor replaces the colours used by an image with colours from a fixed
palette. It keeps replacements perceptually close, keeps the light/dark order
and hue of the original, and keeps colours that were distinct in the source
distinct after mapping.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.recolor.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newMapCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// init sets up logging and reads configuration from .env, the config file
// and RECOLOR_* environment variables.
func (a *app) init(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	if a.logJSON {
		a.log.SetFormatter(&logrus.JSONFormatter{})
	}
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	if err := godotenv.Load(); err == nil {
		a.log.Debug("loaded .env")
	}

	a.v.SetEnvPrefix("recolor")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", a.cfgFile, err)
		}
	} else {
		home, err := homedir.Dir()
		if err != nil {
			a.log.WithError(err).Warn("cannot locate home directory, skipping config file")
			return nil
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".recolor")
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
			return nil
		}
	}
	a.log.WithField("file", a.v.ConfigFileUsed()).Debug("using config file")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
