package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ruleta-service/internal/domain"
)

// NewImportCmd loads a CSV file straight into the configured storage.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		modo string
		self bool
	)
	cmd := &cobra.Command{
		Use:   "importar <archivo.csv>",
		Short: "Import a CSV question bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			mode, err := domain.ParseImportMode(modo)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				log.Warn().Msg("no postgres configured: imported questions only live for this command")
			} else if err := runMigrations(cmd.Context(), cfg); err != nil {
				return err
			}

			services, cleanup, err := buildServices(cmd.Context(), cfg)
			defer cleanup()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var summary domain.ImportSummary
			if self {
				summary, err = services.Self.Import(cmd.Context(), filepath.Base(args[0]), f, mode)
			} else {
				summary, err = services.Questions.Import(cmd.Context(), filepath.Base(args[0]), f, mode)
			}
			if err != nil {
				return fmt.Errorf("importar %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVar(&modo, "modo", string(domain.ImportMerge), "combinar or reemplazar")
	cmd.Flags().BoolVar(&self, "autoevaluacion", false, "import into the self-assessment bank")
	return cmd
}
