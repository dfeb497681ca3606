package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/i2y/bridle/models"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	modelsFile string

	cfg Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bridle",
		Short:         "Stream completions from Anthropic, Vertex AI, Gemini and OpenAI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", defaultConfigPath(), "config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before running")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&a.modelsFile, "models-file", "", "YAML model catalog overrides")

	root.AddCommand(newChatCmd(a), newModelsCmd(a), newVersionCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", a.envFile, err)
		}
	}

	cfg, err := loadConfig(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = newLogger(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		return err
	}

	overrides := a.modelsFile
	if overrides == "" {
		overrides = cfg.ModelsFile
	}
	if overrides != "" {
		if err := models.LoadOverridesFile(overrides); err != nil {
			return err
		}
		a.log.Debug("loaded model overrides", slog.String("path", overrides))
	}
	return nil
}
