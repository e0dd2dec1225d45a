package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"docuai/internal/models"
)

const DefaultTone = "formal"

var tones = map[string]string{
	"formal":     "Use a formal, precise business register. Avoid contractions and slang.",
	"friendly":   "Use a warm, approachable tone while staying professional.",
	"persuasive": "Write persuasively: lead with benefits, support claims, close with a clear call to action.",
	"concise":    "Be brief. Prefer short sentences and bullet points; omit filler.",
	"neutral":    "Use a neutral, factual tone without embellishment.",
}

// NormalizeTone returns the canonical tone, DefaultTone for empty input, and
// ErrInvalidInput for anything unknown.
func NormalizeTone(tone string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(tone))
	if t == "" {
		return DefaultTone, nil
	}
	if _, ok := tones[t]; !ok {
		return "", invalidInput("unknown tone %q", tone)
	}
	return t, nil
}

func Tones() []string {
	out := make([]string, 0, len(tones))
	for t := range tones {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var typeInstructions = map[models.TemplateType]string{
	models.TemplateInvoice: "You prepare commercial invoices. Include seller and buyer details when provided, " +
		`an "items" array of objects with "description", "quantity", "unitPrice" and "amount", ` +
		`plus "subtotal", "tax", "total", "currency" and "dueDate" keys where they can be derived.`,
	models.TemplateReport: "You write structured business reports with an executive summary, findings, analysis and recommendations. " +
		`Put quantitative data in "table".`,
	models.TemplateMemo: `You write internal memos. Include "to", "from", "date" and "subject" keys and keep sections short.`,
	models.TemplateProposal: "You write business proposals covering the problem, proposed solution, scope, timeline, pricing and next steps. " +
		`Put milestones in a "milestones" array of objects with "name", "date" and "deliverable".`,
	models.TemplateLetter: `You write business letters. Include "recipient", "sender", "date", "salutation" and "closing" keys; ` +
		"each paragraph of the letter body is one section.",
	models.TemplateContract: `You draft plain-language service agreements. Include a "parties" array and number the clauses as sections. ` +
		"Do not invent legally binding specifics that were not provided; mark them as placeholders in square brackets.",
	models.TemplateMinutes: `You write meeting minutes. Include "date", "attendees" and "location" keys, one section per agenda item, ` +
		`and an "actionItems" array of objects with "owner", "action" and "due".`,
}

const outputContract = `Respond with a single JSON object and nothing else: no markdown, no commentary.
The object must have this shape:
{
  "title": string,
  "summary": string,
  "sections": [{"heading": string, "body": string, "bullets": [string]}],
  "table": {"columns": [string], "rows": [[string]]}
}
"table" and "bullets" are optional. Additional top-level keys described above are allowed.`

// BuildPrompt assembles the system and user instructions for one generation.
// A template's own system prompt replaces the built-in instructions for its
// type; the JSON output contract and tone always apply.
func BuildPrompt(tmpl *models.Template, userInput string, tone, title string) (string, string, error) {
	tone, err := NormalizeTone(tone)
	if err != nil {
		return "", "", err
	}

	base := strings.TrimSpace(tmpl.SystemPrompt)
	if base == "" {
		base = typeInstructions[tmpl.Type]
	}
	if base == "" {
		base = "You write professional business documents."
	}

	var system strings.Builder
	system.WriteString(base)
	system.WriteString("\n\nTone: ")
	system.WriteString(tones[tone])
	system.WriteString("\n\n")
	system.WriteString(outputContract)

	var input map[string]any
	if err := json.Unmarshal([]byte(userInput), &input); err != nil {
		return "", "", invalidInput("input must be a JSON object")
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Create a %s document using the template %q.\n", tmpl.Type, tmpl.Name)
	if title = strings.TrimSpace(title); title != "" {
		fmt.Fprintf(&user, "Use the title %q.\n", title)
	}
	user.WriteString("\nProvided details:\n")

	labels := make(map[string]string, len(tmpl.Fields))
	for _, f := range tmpl.Fields {
		labels[f.Name] = f.Label
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := labels[k]
		if label == "" {
			label = k
		}
		v, _ := json.Marshal(input[k])
		fmt.Fprintf(&user, "- %s: %s\n", label, v)
	}
	if len(keys) == 0 {
		user.WriteString("- (none, use sensible placeholders)\n")
	}
	return system.String(), user.String(), nil
}

// validateInput checks that raw is a JSON object carrying every required field.
func validateInput(tmpl *models.Template, raw map[string]any) error {
	if raw == nil {
		return invalidInput("userInput must be a JSON object")
	}
	var missing []string
	for _, f := range tmpl.Fields {
		if !f.Required {
			continue
		}
		v, ok := raw[f.Name]
		if !ok || v == nil {
			missing = append(missing, f.Name)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return invalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
