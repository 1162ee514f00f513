package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFromDirectory merges prompts and schemas from disk into the registry,
// overriding built-ins with matching IDs. Expected layout:
//
//	baseDir/
//	  prompts/
//	    <category>/
//	      <name>.json
//	  schemas/
//	    <name>.json
func (r *Registry) LoadFromDirectory(baseDir string) error {
	promptDir := filepath.Join(baseDir, "prompts")
	if err := r.loadPrompts(promptDir); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	// Schemas are optional.
	schemaDir := filepath.Join(baseDir, "schemas")
	if _, err := os.Stat(schemaDir); err == nil {
		if err := r.loadSchemas(schemaDir); err != nil {
			return fmt.Errorf("failed to load schemas: %w", err)
		}
	}
	return nil
}

func (r *Registry) loadPrompts(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("prompts directory not found: %s", dir)
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return r.Register(&pt)
	})
}

func (r *Registry) loadSchemas(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var s ResponseSchema
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return r.RegisterSchema(&s)
	})
}
