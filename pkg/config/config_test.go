package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  base_url: "http://localhost:11434"
  model: "mistral"
  max_tokens: 1000
  temperature: 0.5

embedder:
  model: "nomic-embed-text:latest"

database:
  url: "postgres://localhost:5432/test"
  table_name: "test_chunks"
  vector_dim: 768
  batch_size: 20

processor:
  chunk_size: 500
  chunk_overlap: 100

retrieval:
  top_k: 4
  expansions: 3

ui:
  streaming: false
  theme: "dark"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "mistral", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "nomic-embed-text:latest", config.Embedder.Model)
	assert.Equal(t, "postgres://localhost:5432/test", config.Database.URL)
	assert.Equal(t, "test_chunks", config.Database.TableName)
	assert.Equal(t, 768, config.Database.VectorDim)
	assert.Equal(t, 20, config.Database.BatchSize)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 100, config.Processor.ChunkOverlap)
	assert.Equal(t, 4, config.Retrieval.TopK)
	assert.Equal(t, 3, config.Retrieval.Expansions)
	assert.Equal(t, "dark", config.UI.Theme)
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("llm:\n  model: mistral\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 768, config.Database.VectorDim)
	assert.Equal(t, 20, config.Database.BatchSize)
	assert.Equal(t, 1000, config.Processor.ChunkSize)
	assert.Equal(t, 4, config.Retrieval.TopK)
	assert.Equal(t, 3, config.Retrieval.Expansions)
	assert.Equal(t, "nomic-embed-text:latest", config.Embedder.Model)
	assert.Equal(t, config.LLM.BaseURL, config.Embedder.BaseURL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/db")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte("llm:\n  base_url: http://file-host:11434\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://ollama.internal:11434", config.LLM.BaseURL)
	assert.Equal(t, "http://ollama.internal:11434", config.Embedder.BaseURL)
	assert.Equal(t, "postgres://env-host:5432/db", config.Database.URL)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("llm: [not a mapping"), 0644)
	require.NoError(t, err)

	_, err = LoadConfig(configPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Empty(t, config.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	config.LLM.MaxTokens = 0
	config.Database.VectorDim = -1
	config.Database.BatchSize = 0
	config.Processor.ChunkSize = 0
	config.Retrieval.TopK = 0

	errs := config.Validate()
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}

	assert.True(t, fields["llm.max_tokens"])
	assert.True(t, fields["database.vector_dim"])
	assert.True(t, fields["database.batch_size"])
	assert.True(t, fields["processor.chunk_size"])
	assert.True(t, fields["retrieval.top_k"])
}

func TestValidate_ChunkOverlap(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	config.Processor.ChunkSize = 100
	config.Processor.ChunkOverlap = 100

	errs := config.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, "processor.chunk_overlap", errs[0].Field)
}
