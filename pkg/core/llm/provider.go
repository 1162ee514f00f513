// Package llm holds the text and vision completion providers the agents
// talk to. Providers are injected; agents never construct them.
package llm

import (
	"context"
	"fmt"
)

// TextProvider is a plain text completion backend.
type TextProvider interface {
	// Query sends a prompt plus optional system prompt and returns the
	// final concatenated text. Options carry provider-specific knobs
	// ("model", "response_format").
	Query(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// VisionProvider extends text completion with single-image input.
type VisionProvider interface {
	TextProvider
	QueryWithImage(ctx context.Context, prompt string, image []byte, mediaType string, systemPrompt string) (string, error)
}

// acceptedMediaTypes is the closed set of image formats vision calls take.
var acceptedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateMediaType rejects image formats outside the accepted set.
func ValidateMediaType(mediaType string) error {
	if !acceptedMediaTypes[mediaType] {
		return fmt.Errorf("unsupported image media type %q", mediaType)
	}
	return nil
}

func optString(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

func wantsJSON(options map[string]interface{}) bool {
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		return val["type"] == "json_object"
	}
	return false
}
