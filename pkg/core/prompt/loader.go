package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"
)

// LoadFromDirectory loads prompts and schemas laid out as:
//
//	baseDir/
//	  prompts/
//	    report/
//	      generate.json
//	  schemas/
//	    property_report.json
func (r *Registry) LoadFromDirectory(baseDir string) error {
	if _, err := os.Stat(baseDir); err != nil {
		return fmt.Errorf("resources directory not found: %s", baseDir)
	}
	return r.LoadFromFS(os.DirFS(baseDir))
}

// LoadFromFS loads prompts and schemas from fsys using the same layout as
// LoadFromDirectory. Files loaded later replace earlier ones with the same ID,
// so an on-disk directory can override the embedded defaults.
func (r *Registry) LoadFromFS(fsys fs.FS) error {
	if err := loadPrompts(r, fsys, "prompts"); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	if err := loadSchemas(r, fsys, "schemas"); err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}
	return nil
}

// loadPrompts registers every .json file under dir.
func loadPrompts(r *Registry, fsys fs.FS, dir string) error {
	if _, err := fs.Stat(fsys, dir); err != nil {
		return fmt.Errorf("prompts directory not found: %s", dir)
	}

	return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		id, category := idAndCategory(p, dir)
		if pt.ID == "" {
			pt.ID = id
		}
		if pt.Category == "" {
			pt.Category = category
		}

		if err := r.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}

		return nil
	})
}

// loadSchemas registers schema files by base name. The directory is optional.
func loadSchemas(r *Registry, fsys fs.FS, dir string) error {
	if _, err := fs.Stat(fsys, dir); err != nil {
		return nil
	}

	return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", p, err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("schema %s is not valid JSON", p)
		}

		// the file body is the schema itself
		name := strings.TrimSuffix(path.Base(p), ".json")
		return r.RegisterSchema(&ResponseSchema{ID: name, Name: name, JSONSchema: string(data)})
	})
}

// idAndCategory derives both from a path under dir:
// "prompts/report/generate.json" is ID "report.generate" in category "report".
// Files directly under dir fall in category "default".
func idAndCategory(p, dir string) (id, category string) {
	rel := strings.TrimSuffix(strings.TrimPrefix(p, dir+"/"), ".json")
	id = strings.ReplaceAll(rel, "/", ".")
	category = "default"
	if i := strings.Index(rel, "/"); i > 0 {
		category = rel[:i]
	}
	return id, category
}

// RenderUserPrompt executes the user prompt template with the given context.
// Declared defaults fill absent variables; a missing required variable is an
// error.
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	vars := make(map[string]interface{}, len(pt.Variables))
	if ctx != nil {
		for k, v := range ctx.Variables {
			vars[k] = v
		}
	}
	for _, v := range pt.Variables {
		if _, ok := vars[v.Name]; ok {
			continue
		}
		if v.Required {
			return "", fmt.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
		}
		vars[v.Name] = v.Default
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=zero").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
