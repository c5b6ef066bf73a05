package llm

import (
	"embed"
	"sort"
	"strings"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// Template names known to the builder.
const (
	TemplateCallEval  = "call_eval_prompt"
	TemplateLeadNotes = "lead_notes_prompt"
)

// Built-in fallbacks carrying the same placeholder contract as the embedded
// files, used if a template file is missing from the binary.
var builtinTemplates = map[string]string{
	TemplateCallEval: `Analyze this sales call transcript and return ONLY a JSON object with
rapport_building, need_discovery, closing_attempt, compliance_risk,
quality_score (floats 0-1), summary (string) and next_actions (list).

Example:
{"rapport_building": 0.8, "need_discovery": 0.9, "closing_attempt": 0.7, "compliance_risk": 0.1, "quality_score": 0.8, "summary": "Good call", "next_actions": ["Follow up"]}

Transcript:
{{TRANSCRIPT}}`,
	TemplateLeadNotes: `Interpret these real-estate lead notes and return ONLY a JSON object with
intent_level (float 0-1), urgency_level (float 0-1) and constraints (string).

Example:
{"intent_level": 0.8, "urgency_level": 0.6, "constraints": ""}

Notes:
{{NOTES}}`,
}

// BuildPrompt loads the named template and substitutes the provided values.
// Substitution keys are matched against {{KEY}} placeholders, uppercased.
// Values are inserted verbatim: the recipient is a language model, not an
// interpreter, so no escaping is applied. BuildPrompt never fails; a missing
// or unknown template resolves to a built-in default with the same
// placeholder contract.
func BuildPrompt(name string, subs map[string]string) string {
	template := loadTemplate(name, subs)

	for key, value := range subs {
		placeholder := "{{" + strings.ToUpper(strings.TrimSpace(key)) + "}}"
		template = strings.ReplaceAll(template, placeholder, value)
	}

	return template
}

func loadTemplate(name string, subs map[string]string) string {
	data, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err == nil && strings.TrimSpace(string(data)) != "" {
		return string(data)
	}

	if builtin, ok := builtinTemplates[name]; ok {
		return builtin
	}

	// Unknown template name: degrade to a generic instruction that still
	// carries a placeholder for every substitution the caller supplied.
	keys := make([]string, 0, len(subs))
	for key := range subs {
		keys = append(keys, strings.ToUpper(strings.TrimSpace(key)))
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Return ONLY a JSON object.")
	for _, key := range keys {
		b.WriteString("\n\n")
		b.WriteString(key)
		b.WriteString(":\n{{")
		b.WriteString(key)
		b.WriteString("}}")
	}

	return b.String()
}
