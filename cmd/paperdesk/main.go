package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/client"
	"github.com/paperdesk/paperdesk/internal/config"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/session"
	"github.com/paperdesk/paperdesk/internal/workflow"
)

const programName = "paperdesk"

var globalFlags = struct {
	debug bool
}{}

// app bundles everything a command needs: configuration, the persistent
// session and the API client bound to it.
type app struct {
	cfg     *config.ClientConfig
	logger  *logger.Logger
	session *session.Store
	api     *client.Client
}

func newApp() (*app, error) {
	cfg, err := config.NewClientConfig()
	if err != nil {
		return nil, err
	}

	logLevel := 0
	if globalFlags.debug {
		logLevel = -4
	}
	log := logger.New(logLevel)

	stateDir := cfg.StateDir
	if stateDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state dir: %w", err)
		}
		stateDir = filepath.Join(configDir, programName)
	}

	store, err := session.NewStore(stateDir)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		session: store,
		api:     client.New(cfg.ServerURL, store),
	}, nil
}

func (a *app) close() {
	_ = a.session.Close()
}

func (a *app) auth() *workflow.Auth {
	return workflow.NewAuth(a.api, a.session, a.logger)
}

// runWithApp wraps a command body with app setup and teardown.
func runWithApp(run func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return run(a, cmd, args)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Submit, review and publish academic papers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(
		signupCommand(),
		loginCommand(),
		logoutCommand(),
		whoamiCommand(),
		papersCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
