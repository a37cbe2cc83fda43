package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimiro1/banner"
	"github.com/spf13/cobra"

	"github.com/blinxlabs/blinx/internal/agent"
	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/dependency"
	"github.com/blinxlabs/blinx/internal/session"
)

var chatBanner bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat (default)",
	RunE:  runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&chatBanner, "banner", true, "Print the startup banner")
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listenForSignals(cancel)

	if chatBanner {
		printBanner()
	}

	conv, err := agent.StartConversation(ctx, container.Service(), container.AssistantSpec(), cfg.OpenAI.AssistantID)
	if err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}

	p := container.Persona()
	fmt.Printf("Chatting with %s (type 'exit' to quit)\n", p.Name)

	return session.New(container.Responder(), conv, p.Name, os.Stdin, os.Stdout, os.Stderr).Run(ctx)
}

func printBanner() {
	tpl := "{{ .Title \"BLINX\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

// listenForSignals cancels ctx on SIGINT or SIGTERM and exits.
func listenForSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()
}
