package prompt

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknown is wrapped by lookups that find nothing.
var ErrUnknown = errors.New("not in prompt library")

// Registry holds loaded prompts and response schemas. It is safe for
// concurrent use; the server loads it once and reads it per request.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*PromptTemplate
	schemas map[string]*ResponseSchema
}

func NewRegistry() *Registry {
	return &Registry{
		prompts: make(map[string]*PromptTemplate),
		schemas: make(map[string]*ResponseSchema),
	}
}

// Register adds or replaces a prompt.
func (r *Registry) Register(pt *PromptTemplate) error {
	if pt.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	r.prompts[pt.ID] = pt
	r.mu.Unlock()
	return nil
}

// RegisterSchema adds or replaces a response schema.
func (r *Registry) RegisterSchema(s *ResponseSchema) error {
	if s.ID == "" {
		return fmt.Errorf("schema ID cannot be empty")
	}
	r.mu.Lock()
	r.schemas[s.ID] = s
	r.mu.Unlock()
	return nil
}

func (r *Registry) GetPrompt(id string) (*PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.prompts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("prompt %q: %w", id, ErrUnknown)
}

// SchemaFor returns the response schema a prompt references.
func (r *Registry) SchemaFor(pt *PromptTemplate) (*ResponseSchema, error) {
	if pt.ResponseSchemaID == "" {
		return nil, fmt.Errorf("prompt %s has no response schema", pt.ID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.schemas[pt.ResponseSchemaID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("schema %q: %w", pt.ResponseSchemaID, ErrUnknown)
}

// ListPrompts returns the registered prompt IDs in order.
func (r *Registry) ListPrompts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

func (r *Registry) SchemaCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
