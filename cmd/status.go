package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/persona"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which settings blinx will use",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	fmt.Printf("Blinx %s status\n\n", version)

	_, statErr := os.Stat(config.DotEnvFile)
	fmt.Printf(".env:        %s\n", mark(statErr == nil))

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		fmt.Printf("  (could not load persona: %v)\n", err)
		return nil
	}
	model := p.Model
	if cfg.OpenAI.Model != "" {
		model = cfg.OpenAI.Model
	}
	fmt.Printf("Persona:     %s (%s)\n", p.Name, model)
	if cfg.OpenAI.AssistantID != "" {
		fmt.Printf("Assistant:   %s\n", cfg.OpenAI.AssistantID)
	}
	fmt.Printf("RPC:         %s\n\n", cfg.Trade.RPCEndpoint)

	fmt.Println("Credentials:")
	fmt.Printf("  %-18s %s\n", "OPENAI_API_KEY", mark(cfg.OpenAI.APIKey != ""))
	fmt.Printf("  %-18s %s\n", "BITQUERY_API_KEY", mark(cfg.Bitquery.APIKey != ""))
	fmt.Printf("  %-18s %s\n", "PRIVATE_KEYPAIR", mark(cfg.Trade.PrivateKeypair != ""))
	return nil
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "(not set)"
}
