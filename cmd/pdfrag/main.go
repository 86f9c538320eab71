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
	"github.com/schollz/progressbar/v3"

	"pdfrag/pkg/config"
	"pdfrag/pkg/extractor"
	"pdfrag/pkg/indexer"
	"pdfrag/pkg/llm"
	"pdfrag/pkg/processor"
	"pdfrag/pkg/rag"
	"pdfrag/pkg/store"
	"pdfrag/server"
)

type flags struct {
	configPath string
	pdfPath    string
	serveAddr  string
	ollamaURL  string
	dbURL      string
	model      string
	topK       int
}

func main() {
	_ = godotenv.Load()

	f := parseFlags()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() flags {
	var f flags

	flag.StringVar(&f.configPath, "config", "", "Path to config file")
	flag.StringVar(&f.pdfPath, "pdf", "", "PDF file to index before starting")
	flag.StringVar(&f.serveAddr, "serve", "", "Serve a WebSocket API on this address instead of the terminal loop")
	flag.StringVar(&f.ollamaURL, "ollama-url", "", "Ollama server URL")
	flag.StringVar(&f.dbURL, "db-url", "", "PostgreSQL connection string")
	flag.StringVar(&f.model, "model", "", "LLM model to use")
	flag.IntVar(&f.topK, "k", 0, "Number of results to retrieve")
	flag.Parse()

	return f
}

func run(f flags) error {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return err
	}

	// Command line flags override the config file
	if f.ollamaURL != "" {
		cfg.LLM.BaseURL = f.ollamaURL
		cfg.Embedder.BaseURL = f.ollamaURL
	}
	if f.dbURL != "" {
		cfg.Database.URL = f.dbURL
	}
	if f.model != "" {
		cfg.LLM.Model = f.model
	}
	if f.topK > 0 {
		cfg.Retrieval.TopK = f.topK
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid configuration")
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

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   cfg.Embedder.Model,
		BaseURL: cfg.Embedder.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	vectorStore, err := store.NewWithConfig(store.VectorStoreConfig{
		ConnString:  cfg.Database.URL,
		TableName:   cfg.Database.TableName,
		VectorDim:   cfg.Database.VectorDim,
		SearchLimit: cfg.Retrieval.TopK,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	ctx := context.Background()

	if f.pdfPath != "" {
		if err := indexPDF(ctx, cfg, f.pdfPath, embedder, vectorStore); err != nil {
			return fmt.Errorf("failed to index %s: %v", f.pdfPath, err)
		}

		count, err := vectorStore.Count(ctx)
		if err != nil {
			return err
		}
		color.Green("\n✓ Collection now holds %d chunks\n", count)
	}

	engine := rag.NewEngine(rag.EngineConfig{
		TopK: cfg.Retrieval.TopK,
	}, chatEngine, embedder, vectorStore)

	if f.serveAddr != "" {
		return server.NewWSServer(engine).ListenAndServe(f.serveAddr)
	}

	return chatLoop(ctx, engine)
}

func indexPDF(ctx context.Context, cfg *config.Config, path string, embedder *llm.Embedder, vectorStore *store.VectorStore) error {
	color.Blue("\nIndexing %s\n", path)

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: cfg.Processor.ChunkOverlap,
	})

	bar := getProgressBar(-1, "💾 Embedding and storing chunks...")

	ix := indexer.NewWithConfig(indexer.IndexerConfig{
		BatchSize: cfg.Database.BatchSize,
		RateLimit: cfg.Retrieval.RateLimit,
		OnProgress: func(stored int) {
			bar.Set(stored)
		},
	}, extractor.NewPDF(), &proc, embedder, vectorStore)

	stored, err := ix.IndexFile(ctx, path)
	bar.Finish()
	if err != nil {
		return err
	}

	color.Green("\n✓ Stored %d chunks\n", stored)
	return nil
}

func chatLoop(ctx context.Context, engine *rag.Engine) error {
	color.Cyan("\nAsk questions about your documents (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if strings.ToLower(query) == "exit" {
			break
		}
		if query == "" {
			continue
		}

		spinner := getSpinner("🔍 Searching and generating...")
		answer := engine.Ask(ctx, query)
		spinner.Finish()
		fmt.Print("\r")

		assistantPrompt("Assistant: %s\n", answer.Text)

		if len(answer.Hits) > 0 {
			fmt.Println()
			color.Blue("Sources:")
			for _, hit := range answer.Hits {
				color.Blue("  %s (score %.3f, via %q)", hit.Source, hit.Score, hit.Variation.Text)
			}
		}
	}

	return scanner.Err()
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
