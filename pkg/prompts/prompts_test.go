package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgraph/corpusgraph/pkg/llm"
)

func TestCombinedPrompt(t *testing.T) {
	messages, err := DefaultLibrary.ExtractEntities().Combined().Call(map[string]interface{}{
		"entity_types":  "PERSON, LOCATION",
		"content":       "Holmes lived in London.",
		"custom_prompt": "",
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, llm.RoleUser, messages[1].Role)

	// The system message carries the unicode preservation instruction
	assert.Contains(t, messages[0].Content, "Do not escape unicode characters")

	assert.Contains(t, messages[1].Content, "Holmes lived in London.")
	assert.Contains(t, messages[1].Content, "PERSON, LOCATION")
	assert.Contains(t, messages[1].Content, `"entities"`)
	assert.Contains(t, messages[1].Content, `"relationships"`)
	assert.Contains(t, messages[1].Content, "UPPER_SNAKE_CASE")
}

func TestTextPrompt(t *testing.T) {
	messages, err := DefaultLibrary.ExtractEntities().Text().Call(map[string]interface{}{
		"entity_types":  "PERSON",
		"content":       "Some text.",
		"custom_prompt": "Focus on scientists.",
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Contains(t, messages[1].Content, "Some text.")
	assert.Contains(t, messages[1].Content, "Focus on scientists.")
}

func TestRelationshipsPrompt(t *testing.T) {
	messages, err := DefaultLibrary.ExtractRelationships().Relationships().Call(map[string]interface{}{
		"entities":      []map[string]string{{"name": "Holmes"}, {"name": "Watson"}},
		"content":       "Holmes and Watson worked together.",
		"custom_prompt": "",
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Contains(t, messages[1].Content, "Holmes")
	assert.Contains(t, messages[1].Content, "worked together")
}

func TestToPromptJSON(t *testing.T) {
	out, err := ToPromptJSON(map[string]string{"name": "Holmes"}, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Holmes"}`, out)

	indented, err := ToPromptJSON([]string{"a", "b"}, 2)
	require.NoError(t, err)
	assert.Contains(t, indented, "\n")
}
