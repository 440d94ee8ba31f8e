package prompts

import (
	"fmt"

	"github.com/corpusgraph/corpusgraph/pkg/llm"
)

// ExtractEntitiesPrompt defines the interface for entity extraction prompts.
type ExtractEntitiesPrompt interface {
	Text() PromptVersion
	Combined() PromptVersion
}

// ExtractEntitiesVersions holds all versions of entity extraction prompts.
type ExtractEntitiesVersions struct {
	textPrompt     PromptVersion
	combinedPrompt PromptVersion
}

func (e *ExtractEntitiesVersions) Text() PromptVersion     { return e.textPrompt }
func (e *ExtractEntitiesVersions) Combined() PromptVersion { return e.combinedPrompt }

// extractTextPrompt extracts entity nodes from a text passage.
func extractTextPrompt(context map[string]interface{}) ([]llm.Message, error) {
	sysPrompt := `You are an AI assistant that extracts entity nodes from text.
Your primary task is to extract significant entities mentioned in the provided text.`

	entityTypes := context["entity_types"]
	content := context["content"]
	customPrompt := context["custom_prompt"]

	userPrompt := fmt.Sprintf(`
<ENTITY TYPES>
%v
</ENTITY TYPES>

<TEXT>
%v
</TEXT>

Given the above text, extract entities from the TEXT that are explicitly or implicitly mentioned.
For each entity extracted, also determine its type based on the provided ENTITY TYPES and their descriptions.

%v

Guidelines:
1. Extract significant entities, concepts, or actors mentioned in the text.
2. Disambiguate pronoun references (he/she/they, this/that) to the named entity; never emit a pronoun as an entity.
3. Avoid creating entities for relationships or actions.
4. Avoid creating entities for dates, times or years.
5. Be as explicit as possible in entity names, using full names and avoiding abbreviations.

Respond with a JSON object with the field "entities", a list of objects with
fields "name" (string) and "type" (string).`, entityTypes, content, customPrompt)

	return []llm.Message{
		llm.NewSystemMessage(sysPrompt),
		llm.NewUserMessage(userPrompt),
	}, nil
}

// extractCombinedPrompt extracts entities and relationships in a single call:
// one text block, one response with both fields.
func extractCombinedPrompt(context map[string]interface{}) ([]llm.Message, error) {
	sysPrompt := `You are an AI assistant that builds knowledge graphs from text.
Your task is to extract entities and the relationships between them from the provided text.`

	entityTypes := context["entity_types"]
	content := context["content"]
	customPrompt := context["custom_prompt"]

	userPrompt := fmt.Sprintf(`
<ENTITY TYPES>
%v
</ENTITY TYPES>

<TEXT>
%v
</TEXT>

Extract all significant entities from the TEXT, and all relationships between
the extracted entities that the TEXT explicitly states or strongly implies.

%v

Guidelines:
1. Disambiguate pronoun references to the named entity; never emit a pronoun as an entity.
2. Use full names, avoiding abbreviations.
3. Relationship "source" and "target" must exactly match a "name" from the entities list.
4. Relationship "type" is a short UPPER_SNAKE_CASE verb phrase, e.g. WORKS_WITH, LOCATED_IN.
5. Include an "evidence" field quoting the span of text supporting each relationship.
6. Do not invent entities or relationships that the text does not support.

Respond with a JSON object with two fields:
"entities": list of {"name": string, "type": string}
"relationships": list of {"source": string, "target": string, "type": string, "evidence": string}`,
		entityTypes, content, customPrompt)

	return []llm.Message{
		llm.NewSystemMessage(sysPrompt),
		llm.NewUserMessage(userPrompt),
	}, nil
}

// NewExtractEntitiesVersions creates the entity extraction prompt set.
func NewExtractEntitiesVersions() ExtractEntitiesPrompt {
	return &ExtractEntitiesVersions{
		textPrompt:     NewPromptVersion(extractTextPrompt),
		combinedPrompt: NewPromptVersion(extractCombinedPrompt),
	}
}
