package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkShortText(t *testing.T) {
	chunks, err := Chunk("One sentence. Another sentence.", 100, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One sentence. Another sentence.", chunks[0])
}

func TestChunkSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	chunks, err := Chunk(text, 45, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// No chunk exceeds the limit and no sentence is cut
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 45)
		assert.True(t, strings.HasSuffix(c, "."), "chunk should end at a sentence boundary: %q", c)
	}
}

func TestChunkOversizedSentence(t *testing.T) {
	long := strings.Repeat("x", 250) + "."
	chunks, err := Chunk(long, 100, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestChunkOverlap(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. A second sentence follows the first one here."
	chunks, err := Chunk(text, 50, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// The second chunk starts with whole words from the end of the first
	firstWords := strings.Fields(chunks[0])
	lastWord := firstWords[len(firstWords)-1]
	assert.True(t, strings.Contains(chunks[1], strings.TrimSuffix(lastWord, ".")),
		"second chunk %q should carry overlap from %q", chunks[1], chunks[0])

	// Overlap never cuts a word in half
	for _, w := range strings.Fields(chunks[1]) {
		assert.NotEmpty(t, w)
	}
}

func TestChunkTrailingTextWithoutTerminator(t *testing.T) {
	chunks, err := Chunk("Complete sentence. trailing fragment without punctuation", 100, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "trailing fragment")
}

func TestChunkEmptyText(t *testing.T) {
	chunks, err := Chunk("", 100, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkInvalidParams(t *testing.T) {
	_, err := Chunk("text", 0, 0)
	assert.Error(t, err)

	_, err = Chunk("text", 100, -1)
	assert.Error(t, err)
}
