// Package llm defines the contract with the language-model collaborator
// used for intent classification, structured extraction and free-text
// answers, together with the strict shape validation applied to everything
// the model returns. The rest of the application never trusts raw model
// output: a malformed or partial response degrades to a generic-question
// classification.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client is the model collaborator contract. ClassifyStructured expects the
// model to answer with a JSON object; AskText returns plain prose.
type Client interface {
	ClassifyStructured(ctx context.Context, prompt string) (map[string]any, error)
	AskText(ctx context.Context, prompt string) (string, error)
}

// IntentGeneric is the fallback intent used whenever classification fails
// or the response shape cannot be trusted.
const IntentGeneric = "pergunta_geral"

// Classification is the validated form of a classifier response.
type Classification struct {
	Intent     string
	Parameters map[string]any
}

// ParseClassification validates the raw classifier response. A missing or
// blank intent yields the generic-question classification, never an error:
// classification failure is a reply, not a crash.
func ParseClassification(raw map[string]any) Classification {
	if raw == nil {
		return Classification{Intent: IntentGeneric}
	}
	intent, _ := raw["intent"].(string)
	intent = strings.TrimSpace(intent)
	if intent == "" {
		return Classification{Intent: IntentGeneric}
	}
	params, _ := raw["parameters"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return Classification{Intent: intent, Parameters: params}
}

// DecodeInto re-marshals a generic JSON map into a typed struct. It is the
// single path from duck-typed model output to typed payloads.
func DecodeInto(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-marshal model output: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// CleanModelJSON strips markdown fences and any prose around the outermost
// JSON value, for models that ignore the "raw JSON only" instruction.
func CleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
