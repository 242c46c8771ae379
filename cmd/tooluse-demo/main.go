// Command tooluse-demo runs three queries concurrently through the tool-calling agent.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/agent"
	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm/openai"
	"github.com/aescanero/dago-agent-patterns/internal/logging"
	"github.com/aescanero/dago-agent-patterns/internal/tools"
)

var queries = []string{
	"What is the capital of France?",
	"What's the weather like in London?",
	"Tell me something about dogs.",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	llmClient, err := openai.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize llm client", zap.Error(err))
	}
	logger.Info("language model initialized", zap.String("model", llmClient.Model()))

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSearchInformation(logger)); err != nil {
		logger.Fatal("failed to register tool", zap.Error(err))
	}

	a, err := agent.New(llmClient, registry, agent.Config{
		MaxIterations: cfg.AgentMaxIterations,
		Concurrency:   cfg.AgentConcurrency,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize agent", zap.Error(err))
	}

	for _, o := range a.RunAll(context.Background(), queries) {
		fmt.Printf("\n--- Query: %s ---\n", o.Query)
		if o.Err != nil {
			fmt.Printf("Error: %v\n", o.Err)
			continue
		}
		fmt.Println(o.Answer.Content)
	}
}
