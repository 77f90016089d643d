package deploy

import (
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/flags"
	jsonfs "github.com/azero-id/azns-toolkit/internal/infra/filesystem/json"
	"github.com/azero-id/azns-toolkit/internal/journal"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the name service contract suite",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting deploy command. Validating config", slog.Any("config", configs.Values.Deploy))

		if err := configs.Values.Deploy.Validate(); err != nil {
			return err
		}

		var events registry.EventSink
		if path := configs.Values.Journal.Path; path != "" {
			j, err := journal.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open event journal: %w", err)
			}
			defer j.Close()
			events = j
		}

		store := registry.NewStateStore(configs.Values.State.Dir, jsonfs.NewReader(), jsonfs.NewWriter())
		service := NewService(events, store, configs.Values.Reservations.BatchSize)

		suite, err := service.Deploy(cmd.Context(), configs.Values.Deploy)
		if err != nil {
			return fmt.Errorf("error occurred deploying contracts: %w", err)
		}

		slog.Info("contracts deployed successfully", "registry", suite.Registry.Address().String(), "whitelist_phase", suite.Registry.IsWhitelistPhase())

		return nil
	},
}

func init() {
	flags.MustDeclare(CMD, []flags.Def[string]{
		{Name: "deployer", ViperKey: "deploy.deployer", Default: "", Description: "Deployer account (SS58 or hex)"},
		{Name: "tld", ViperKey: "deploy.tld", Default: "azero", Description: "Top level domain served by the registry"},
		{Name: "whitelist-file", ViperKey: "deploy.whitelist-file", Default: "", Description: "Whitelist file; when set the registry starts in the whitelist phase"},
		{Name: "reservations-file", ViperKey: "deploy.reservations-file", Default: "", Description: "Reservations CSV imported after deployment"},
	})
	flags.MustDeclare(CMD, []flags.Def[int]{
		{Name: "version", ViperKey: "deploy.version", Default: 1, Description: "Deployment version used as address salt"},
	})
}
