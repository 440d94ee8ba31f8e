package prompts

// Library defines the interface for the complete prompt library.
type Library interface {
	ExtractEntities() ExtractEntitiesPrompt
	ExtractRelationships() ExtractRelationshipsPrompt
}

// LibraryImpl implements the Library interface.
type LibraryImpl struct {
	extractEntities      ExtractEntitiesPrompt
	extractRelationships ExtractRelationshipsPrompt
}

func (l *LibraryImpl) ExtractEntities() ExtractEntitiesPrompt { return l.extractEntities }
func (l *LibraryImpl) ExtractRelationships() ExtractRelationshipsPrompt {
	return l.extractRelationships
}

// NewLibrary creates a new prompt library instance.
func NewLibrary() Library {
	return &LibraryImpl{
		extractEntities:      NewExtractEntitiesVersions(),
		extractRelationships: NewExtractRelationshipsVersions(),
	}
}

// DefaultLibrary is the default prompt library instance.
var DefaultLibrary = NewLibrary()

// Version is bumped when prompt wording changes in a way that invalidates
// cached extraction results.
const Version = "v1"
