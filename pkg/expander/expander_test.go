package expander_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfrag/internal/models"
	"pdfrag/pkg/expander"
)

type fakeGenerator struct {
	response string
	err      error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.response, g.err
}

func TestExpand_ParsesParaphrases(t *testing.T) {
	gen := &fakeGenerator{
		response: `["What are the internals of goroutines?", "How do I use goroutines day to day?", "What is the idea behind goroutines?"]`,
	}
	e := expander.New(gen)

	variations := e.Expand(context.Background(), "how do goroutines work")

	require.Len(t, variations, 4)
	assert.Equal(t, "how do goroutines work", variations[0].Text)
	assert.Equal(t, models.OriginOriginal, variations[0].Origin)
	for _, v := range variations[1:] {
		assert.Equal(t, models.OriginParaphrase, v.Origin)
		assert.NotEmpty(t, v.Text)
	}
}

func TestExpand_StripsCodeFences(t *testing.T) {
	gen := &fakeGenerator{
		response: "```json\n[\"one phrasing\", \"another phrasing\", \"a third phrasing\"]\n```",
	}
	e := expander.New(gen)

	variations := e.Expand(context.Background(), "original")

	require.Len(t, variations, 4)
	assert.Equal(t, "one phrasing", variations[1].Text)
	assert.Equal(t, models.OriginParaphrase, variations[1].Origin)
}

func TestExpand_MalformedResponseFallsBackToTemplates(t *testing.T) {
	cases := []string{
		"Sure! Here are three paraphrases: ...",
		`["only one"]`,
		`["one", "two", "three", "four"]`,
		`["one", "", "three"]`,
		"",
	}

	for _, response := range cases {
		gen := &fakeGenerator{response: response}
		e := expander.New(gen)

		variations := e.Expand(context.Background(), "vector search")

		require.Len(t, variations, 4, "response %q", response)
		assert.Equal(t, "vector search", variations[0].Text)
		assert.Equal(t, models.OriginOriginal, variations[0].Origin)
		for _, v := range variations[1:] {
			assert.Equal(t, models.OriginTemplate, v.Origin)
			assert.Contains(t, v.Text, "vector search")
		}
	}
}

func TestExpand_ServiceFailureReturnsOriginalOnly(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("connection refused")}
	e := expander.New(gen)

	variations := e.Expand(context.Background(), "what is a chunk")

	require.Len(t, variations, 1)
	assert.Equal(t, "what is a chunk", variations[0].Text)
	assert.Equal(t, models.OriginOriginal, variations[0].Origin)
}

func TestExpand_OriginalAlwaysFirst(t *testing.T) {
	gen := &fakeGenerator{response: `["a", "b", "c"]`}
	e := expander.New(gen)

	for _, query := range []string{"x", "a much longer query about embeddings", "?"} {
		variations := e.Expand(context.Background(), query)
		require.NotEmpty(t, variations)
		assert.Equal(t, query, variations[0].Text)
	}
}
