package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"pdfrag/internal/models"
)

type VectorStoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	SearchLimit int
}

// VectorStore is a pgvector-backed vector index. One table acts as one
// collection of (id, vector, payload) points with cosine similarity
// search.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 4
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.EnsureCollection(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

// CollectionExists reports whether the backing table has been created.
func (vs *VectorStore) CollectionExists(ctx context.Context) (bool, error) {
	var exists bool
	err := vs.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
		vs.config.TableName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %v", err)
	}
	return exists, nil
}

// EnsureCollection creates the table and its cosine index if missing.
func (vs *VectorStore) EnsureCollection(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	exists, err := vs.CollectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT,
			chunk_index INTEGER,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)

	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Upsert stores one batch of chunks with their vectors in a single
// transaction.
func (vs *VectorStore) Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, content, chunk_index, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.config.TableName)

	for i, chunk := range chunks {
		_, err = tx.Exec(ctx, stmt,
			chunk.ID,
			sanitizeUTF8(chunk.Source),
			sanitizeUTF8(chunk.Text),
			chunk.Index,
			pgvector.NewVector(vectors[i]),
			chunk.Metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %v", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Search returns the limit nearest chunks by cosine similarity,
// highest score first. Score is 1 - cosine distance.
func (vs *VectorStore) Search(ctx context.Context, vector []float32, limit int) ([]models.RetrievalHit, error) {
	if limit <= 0 {
		limit = vs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT content, source, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %v", err)
	}
	defer rows.Close()

	var hits []models.RetrievalHit
	for rows.Next() {
		var hit models.RetrievalHit
		var score float64
		if err := rows.Scan(&hit.Content, &hit.Source, &score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		hit.Score = float32(score)
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// Count returns the number of stored points.
func (vs *VectorStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := vs.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", vs.config.TableName),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %v", err)
	}
	return count, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
