package models

// Document is a source document before chunking.
type Document struct {
	ID       string
	Source   string
	Content  string
	Metadata map[string]interface{}
}

// Chunk is the unit of indexing and retrieval: a bounded span of a
// document's text plus its position within that document.
type Chunk struct {
	ID       string
	Source   string
	Text     string
	Index    int
	Metadata map[string]interface{}
}

// QueryVariation is a query string tagged with how it was produced.
// The original user query is always a variation with Origin "original".
type QueryVariation struct {
	Text   string
	Origin string
}

const (
	OriginOriginal   = "original"
	OriginParaphrase = "paraphrase"
	OriginTemplate   = "template"
)

// RetrievalHit is one nearest-neighbor result, tagged with the
// variation that produced it.
type RetrievalHit struct {
	Content   string
	Source    string
	Score     float32
	Variation QueryVariation
	Metadata  map[string]interface{}
}
