// Package prompt is the file-backed prompt library. Prompts and response
// schemas are JSON documents, so instruction wording and the output contract
// change without a rebuild.
package prompt

// IDs of the prompt and schema the report service depends on.
const (
	ReportGenerate = "report.generate"
	ReportSchema   = "property_report"
)

// PromptTemplate is one prompt file.
type PromptTemplate struct {
	ID          string `json:"id"` // derived from the path when empty
	Name        string `json:"name"`
	Category    string `json:"category"` // derived from the folder when empty
	Description string `json:"description"`
	Version     string `json:"version"`

	SystemPrompt     string           `json:"system_prompt"`
	UserPromptTmpl   string           `json:"user_prompt_template"` // text/template
	ResponseSchemaID string           `json:"response_schema_ref"`
	Variables        []PromptVariable `json:"variables"`

	// A prompt asset stored with the provider. Providers that support hosted
	// prompts reference it instead of sending SystemPrompt.
	HostedPromptID      string `json:"hosted_prompt_id"`
	HostedPromptVersion string `json:"hosted_prompt_version"`
}

// PromptVariable declares a template input.
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

// ResponseSchema is a JSON Schema document registered under its file name.
type ResponseSchema struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	JSONSchema  string `json:"json_schema"`
}

// PromptExecutionContext carries template values for one render.
type PromptExecutionContext struct {
	Variables map[string]interface{}
}

func NewContext() *PromptExecutionContext {
	return &PromptExecutionContext{Variables: make(map[string]interface{})}
}

// Set stores a value and returns c for chaining.
func (c *PromptExecutionContext) Set(key string, value interface{}) *PromptExecutionContext {
	c.Variables[key] = value
	return c
}
