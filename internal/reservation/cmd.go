package reservation

import (
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/flags"
	jsonfs "github.com/azero-id/azns-toolkit/internal/infra/filesystem/json"
	"github.com/azero-id/azns-toolkit/internal/namechecker"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "reservations",
	Short: "Validate a reservations file and import it into the stored registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values.Reservations
		slog.Info("starting reservations command. Validating config", slog.Any("config", cfg))

		if err := cfg.Validate(); err != nil {
			return err
		}

		checker, err := namechecker.NewFromConfig(domain.ZeroAccount, configs.Values.Deploy.NameChecker)
		if err != nil {
			return fmt.Errorf("failed to build name checker: %w", err)
		}

		reservations, err := NewParser(cfg.TLD, checker).ParseFile(cfg.File)
		if err != nil {
			return err
		}
		slog.Info("reservations file is valid", "count", len(reservations))

		store := registry.NewStateStore(configs.Values.State.Dir, jsonfs.NewReader(), jsonfs.NewWriter())
		loaded, err := ImportStored(cmd.Context(), store, reservations, cfg.BatchSize)
		if err != nil {
			return err
		}
		if !loaded {
			slog.Warn("no stored registry state, nothing imported", "state_dir", configs.Values.State.Dir)
		}

		return nil
	},
}

func init() {
	flags.MustDeclare(CMD, []flags.Def[string]{
		{Name: "file", ViperKey: "reservations.file", Default: "reservations.csv", Description: "CSV file with name[,address] rows"},
		{Name: "tld", ViperKey: "reservations.tld", Default: "azero", Description: "Top level domain stripped from names"},
	})
	flags.MustDeclare(CMD, []flags.Def[int]{
		{Name: "batch-size", ViperKey: "reservations.batch-size", Default: 50, Description: "Reservations submitted per call"},
	})
}
