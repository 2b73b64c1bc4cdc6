package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ruleta-service/internal/config"
	"ruleta-service/internal/logging"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "ruleta",
		Short:        "Question wheel service: CSV question banks, self-assessment and multiplayer turns",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (default from config, then "+config.DefaultPort+")")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewImportCmd(&configPath))
	return cmd
}

// loadConfig reads the config file and configures the global logger from it.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
