// Command chain-demo extracts a laptop specification and transforms it to JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/chain"
	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm/openai"
	"github.com/aescanero/dago-agent-patterns/internal/logging"
)

const inputText = "The new laptop model features a 3.5 GHz octa-core processor, 16GB of RAM, and a 1TB NVMe SSD."

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

	extractor, err := chain.NewSpecExtractor(llmClient, cfg.ChainStrict, logger)
	if err != nil {
		logger.Fatal("failed to initialize chain", zap.Error(err))
	}

	out, err := extractor.Extract(context.Background(), inputText)
	if err != nil {
		logger.Fatal("chain failed", zap.Error(err))
	}

	fmt.Println("\n--- Final JSON Output ---")
	if out.Spec == nil {
		fmt.Println(out.JSON)
		return
	}

	pretty, err := json.MarshalIndent(out.Spec, "", "  ")
	if err != nil {
		logger.Fatal("failed to encode spec", zap.Error(err))
	}
	fmt.Println(string(pretty))
}
