package embedder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgraph/corpusgraph/pkg/embedder"
)

func TestNewOpenAIEmbedderDefaults(t *testing.T) {
	e := embedder.NewOpenAIEmbedder("test-key", embedder.Config{})
	assert.Equal(t, 1536, e.Dimensions())

	large := embedder.NewOpenAIEmbedder("test-key", embedder.Config{Model: "text-embedding-3-large"})
	assert.Equal(t, 3072, large.Dimensions())
}

// embeddingServer answers the OpenAI embeddings API with one small vector per
// input.
func embeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i := range req.Input {
			resp.Data = append(resp.Data, item{
				Embedding: []float32{float32(i), 1, 2},
				Index:     i,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbed(t *testing.T) {
	srv := embeddingServer(t)
	defer srv.Close()

	e := embedder.NewOpenAIEmbedder("test-key", embedder.Config{
		BaseURL:    srv.URL,
		Dimensions: 3,
	})

	embeddings, err := e.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0, 1, 2}, embeddings[0])
	assert.Equal(t, []float32{1, 1, 2}, embeddings[1])
}

func TestEmbedEmptyInput(t *testing.T) {
	e := embedder.NewOpenAIEmbedder("test-key", embedder.Config{})
	embeddings, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestEmbedSingle(t *testing.T) {
	srv := embeddingServer(t)
	defer srv.Close()

	e := embedder.NewOpenAIEmbedder("test-key", embedder.Config{
		BaseURL:    srv.URL,
		Dimensions: 3,
	})

	vec, err := e.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestEmbedBatching(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Input), 2)

		type item struct {
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for range req.Input {
			resp.Data = append(resp.Data, item{Embedding: []float32{1}})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := embedder.NewOpenAIEmbedder("test-key", embedder.Config{
		BaseURL:   srv.URL,
		BatchSize: 2,
	})

	embeddings, err := e.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, embeddings, 5)
	assert.Equal(t, 3, requests)
}
