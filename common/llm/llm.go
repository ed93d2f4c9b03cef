package llm

import (
	"regexp"

	"github.com/invopop/jsonschema"
)

var nameInvalidChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of thread history handed to the model.
type Message struct {
	Role    string // RoleUser or RoleAssistant
	Name    string // optional speaker label, see SanitizeName
	Content string
}

// GenerateSchema reflects a strict JSON schema for T, suitable for structured outputs.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// SanitizeName maps a display label onto ^[a-zA-Z0-9_-]{1,64}$, the only shape the
// provider accepts for message names.
func SanitizeName(label string) string {
	sanitized := nameInvalidChars.ReplaceAllString(label, "_")
	if len(sanitized) > 64 {
		sanitized = sanitized[:64]
	}
	return sanitized
}
