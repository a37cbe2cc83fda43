package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/dependency"
	"github.com/blinxlabs/blinx/internal/schema"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool definitions sent to the assistant",
	RunE:  runTools,
}

type toolDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parameters  map[string]any `yaml:"parameters"`
}

func runTools(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	docs, err := toolDocs(container.Registry().Definitions())
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(docs)
}

func toolDocs(defs []schema.Definition) ([]toolDoc, error) {
	docs := make([]toolDoc, 0, len(defs))
	for _, def := range defs {
		var params map[string]any
		if err := json.Unmarshal(def.Parameters, &params); err != nil {
			return nil, fmt.Errorf("tool %s: invalid parameter schema: %w", def.Name, err)
		}
		docs = append(docs, toolDoc{Name: def.Name, Description: def.Description, Parameters: params})
	}
	return docs, nil
}
