package prompts

import (
	"fmt"

	"github.com/corpusgraph/corpusgraph/pkg/llm"
)

// ExtractRelationshipsPrompt defines the interface for relationship
// extraction prompts.
type ExtractRelationshipsPrompt interface {
	Relationships() PromptVersion
}

// ExtractRelationshipsVersions holds all versions of relationship extraction
// prompts.
type ExtractRelationshipsVersions struct {
	relationshipsPrompt PromptVersion
}

func (e *ExtractRelationshipsVersions) Relationships() PromptVersion {
	return e.relationshipsPrompt
}

// relationshipsPrompt extracts relationships between already-known entities.
func relationshipsPrompt(context map[string]interface{}) ([]llm.Message, error) {
	sysPrompt := `You are an AI assistant that extracts relationships between entities from text.`

	entities := context["entities"]
	content := context["content"]
	customPrompt := context["custom_prompt"]

	entitiesJSON, err := ToPromptJSON(entities, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entities: %w", err)
	}

	userPrompt := fmt.Sprintf(`
<ENTITIES>
%s
</ENTITIES>

<TEXT>
%v
</TEXT>

Given the above TEXT and the list of ENTITIES found in it, extract all
relationships between those entities that the TEXT explicitly states or
strongly implies.

%v

Guidelines:
1. "source" and "target" must exactly match a "name" from ENTITIES.
2. "type" is a short UPPER_SNAKE_CASE verb phrase, e.g. WORKS_WITH, LOCATED_IN.
3. Include an "evidence" field quoting the span of text supporting each relationship.
4. Do not emit a relationship twice, and do not relate an entity to itself.

Respond with a JSON object with the field "relationships", a list of
{"source": string, "target": string, "type": string, "evidence": string}.`,
		entitiesJSON, content, customPrompt)

	return []llm.Message{
		llm.NewSystemMessage(sysPrompt),
		llm.NewUserMessage(userPrompt),
	}, nil
}

// NewExtractRelationshipsVersions creates the relationship extraction prompt
// set.
func NewExtractRelationshipsVersions() ExtractRelationshipsPrompt {
	return &ExtractRelationshipsVersions{
		relationshipsPrompt: NewPromptVersion(relationshipsPrompt),
	}
}
