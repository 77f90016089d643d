package whitelist

import (
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/flags"
	jsonfs "github.com/azero-id/azns-toolkit/internal/infra/filesystem/json"
	"github.com/azero-id/azns-toolkit/internal/output"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "whitelist",
	Short: "Build the whitelist merkle tree and write every proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting whitelist command. Validating config", slog.Any("config", configs.Values.Whitelist))

		if err := configs.Values.Whitelist.Validate(); err != nil {
			return err
		}

		store := registry.NewStateStore(configs.Values.State.Dir, jsonfs.NewReader(), jsonfs.NewWriter())
		set, err := NewService(output.NewGenerator(jsonfs.NewWriter()), store).Run(cmd.Context(), configs.Values.Whitelist)
		if err != nil {
			return fmt.Errorf("error occurred generating proofs: %w", err)
		}

		slog.Info("whitelist proofs generated", "root", set.Root().Hex(), "output", configs.Values.Whitelist.Output)

		return nil
	},
}

func init() {
	flags.MustDeclare(CMD, []flags.Def[string]{
		{Name: "file", ViperKey: "whitelist.file", Default: "whitelist.txt", Description: "Whitelist file, one address per line"},
		{Name: "output", ViperKey: "whitelist.output", Default: "proofs.yaml", Description: "Proofs document to write"},
	})
	flags.MustDeclare(CMD, []flags.Def[int]{
		{Name: "workers", ViperKey: "whitelist.workers", Default: 8, Description: "Concurrent proof checks"},
	})
}
