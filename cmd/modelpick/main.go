package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"pdfrag/pkg/advisor"
	"pdfrag/pkg/config"
	"pdfrag/pkg/llm"
)

func main() {
	_ = godotenv.Load()

	var configPath, query string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&query, "query", "", "What you need the model for (prompted interactively if empty)")
	flag.Parse()

	if err := run(configPath, query); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, query string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	adv, err := advisor.New(chatEngine, advisor.DefaultCatalog)
	if err != nil {
		return err
	}

	if query == "" {
		color.Green("What do you need an AI model for? ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return scanner.Err()
		}
		query = strings.TrimSpace(scanner.Text())
	}
	if query == "" {
		return fmt.Errorf("no query provided")
	}

	recommendation, err := adv.Recommend(context.Background(), query)
	if err != nil {
		return err
	}

	color.Cyan("\n%s\n", recommendation)
	return nil
}
