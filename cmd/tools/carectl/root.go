package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hallikerijaved/CareGpt/internal/bootstrap"
	"github.com/hallikerijaved/CareGpt/internal/config"
	"github.com/hallikerijaved/CareGpt/internal/logging"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "carectl",
		Short:         "Operator tools for the CareGPT backend",
		Long:          "carectl talks to the CareGPT bot from the terminal and checks the Volcengine speech setup.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newAskCmd(),
		newChatCmd(),
		newASRCmd(),
		newTTSCmd(),
		newIntentsCmd(),
	)
	return rootCmd
}

// env is the configuration and logger shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnv reads .env and the process environment. Logs go to the command's
// stderr so they never mix with replies.
func loadEnv(cmd *cobra.Command) (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// No file sink, so there is nothing to close.
	logger, _, err := logging.New(config.LogConfig{Level: cfg.Log.Level}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func loadCore(cmd *cobra.Command) (*env, *bootstrap.Core, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	core, err := bootstrap.NewCore(cmd.Context(), e.cfg, e.logger)
	if err != nil {
		return nil, nil, err
	}
	return e, core, nil
}
