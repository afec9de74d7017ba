package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spysignal/internal/app"
	"spysignal/internal/logging"
)

const requestTimeout = 15 * time.Second

var (
	configPath string
	home       string
	relayURL   string
	passphrase string
	logLevel   string

	wire *app.Wire
)

// NewRootCmd builds the spysignal command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spysignal",
		Short:         "End-to-end encrypted chat CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var homeFlag string
			if flags.Changed("home") {
				homeFlag = home
			}
			cfg, err := app.LoadFrom(configPath, homeFlag)
			if err != nil {
				return err
			}
			if flags.Changed("relay") {
				cfg.RelayURL = relayURL
			}
			if flags.Changed("passphrase") {
				cfg.Passphrase = passphrase
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}

			log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, log, nil)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	pf.StringVar(&home, "home", "", "state dir (default ~/.spysignal)")
	pf.StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8000)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity file")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		registerCmd(),
		searchCmd(),
		sendCmd(),
		historyCmd(),
		listenCmd(),
	)
	return root
}

// timeout bounds a single relay round trip.
func timeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}
