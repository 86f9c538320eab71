package processor

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"pdfrag/internal/models"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Processor splits documents into chunks using recursive
// character-based splitting.
type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)

	return Processor{
		config:   config,
		splitter: splitter,
	}
}

func (p *Processor) Split(doc models.Document) ([]models.Chunk, error) {
	pieces, err := p.splitter.SplitText(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to split document %s: %v", doc.ID, err)
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, models.Chunk{
			ID:       fmt.Sprintf("%s_%d", doc.ID, i),
			Source:   doc.Source,
			Text:     text,
			Index:    i,
			Metadata: doc.Metadata,
		})
	}

	return chunks, nil
}
