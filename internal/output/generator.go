package output

import (
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/internal/infra/filesystem"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"gopkg.in/yaml.v3"
)

type Generator struct {
	writer filesystem.Writer
	logger *slog.Logger
}

func NewGenerator(writer filesystem.Writer) *Generator {
	return &Generator{
		writer: writer,
		logger: logger.Named("output_generator"),
	}
}

// Generate writes the proofs document to path.
func (g *Generator) Generate(path string, model *ProofsModel) error {
	data, err := yaml.Marshal(model)
	if err != nil {
		return fmt.Errorf("could not marshal proofs model: %w", err)
	}

	if err := g.writer.WriteBytes(path, data); err != nil {
		return fmt.Errorf("could not write proofs file: %w", err)
	}

	g.logger.Info("proofs document written", "path", path, "entries", model.Count)
	return nil
}
