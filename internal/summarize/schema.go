// Package summarize turns extracted paper markdown into structured records
// using an LLM with a JSON-Schema constrained response format.
package summarize

// SchemaVersion identifies the record schema. It participates in the
// response cache key so schema changes invalidate cached records.
const SchemaVersion = "paper_record/v1"

// BuildPaperRecordSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is passed to the LLM as a structured output constraint
// and also used locally to validate responses before acceptance.
func BuildPaperRecordSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":   stringProp("The title of the paper."),
			"authors": stringListProp("The authors of the paper."),
			"summary": objectProp("Summary of the paper.", map[string]any{
				"eli5_summary":     stringProp("A novice level summary of the text, in the style of ELI5."),
				"basic_summary":    stringProp("A basic level summary of the text."),
				"advanced_summary": stringProp("An advanced level summary of the text."),
			}, []string{"eli5_summary", "basic_summary", "advanced_summary"}),
			"comprehension_aid": objectProp("Guide for how to approach reading the paper.", map[string]any{
				"reading_roadmap":  stringListProp("Optimal order to read sections."),
				"focus_areas":      stringListProp("Most important parts to understand deeply."),
				"skip_suggestions": stringListProp("Sections that can be skimmed."),
			}, []string{"reading_roadmap", "focus_areas", "skip_suggestions"}),
			"connection_mapping": objectProp("How this work fits in the broader landscape.", map[string]any{
				"prior_work":             stringListProp("How this builds on previous research."),
				"related_fields":         stringListProp("Connections to other domains."),
				"future_directions":      stringListProp("What research this enables."),
				"practical_applications": stringListProp("Real-world uses."),
			}, []string{"prior_work", "related_fields", "future_directions", "practical_applications"}),
			"key_insights": listProp("Major breakthroughs and findings.", objectProp("", map[string]any{
				"insight":      stringProp("Main takeaway or breakthrough."),
				"significance": stringProp("Why this matters in the field."),
				"implications": stringListProp("What this enables or changes."),
			}, []string{"insight", "significance", "implications"})),
			"concept_explanations": listProp("Concept explanations for the paper.", objectProp("", map[string]any{
				"concept":            stringProp("Technical term or concept from the paper."),
				"simple_explanation": stringProp("Plain language explanation."),
				"analogies":          stringListProp("Real-world analogies to aid understanding."),
				"prerequisites":      stringListProp("What you need to know first."),
			}, []string{"concept", "simple_explanation", "analogies", "prerequisites"})),
			"critical_analysis": objectProp("Balanced assessment of the work.", map[string]any{
				"strengths":              stringListProp("What the paper does well."),
				"limitations":            stringListProp("Potential weaknesses or gaps."),
				"assumptions":            stringListProp("Unstated assumptions made."),
				"methodology_assessment": stringProp("Quality of research methods."),
			}, []string{"strengths", "limitations", "assumptions", "methodology_assessment"}),
			"future_work": stringProp("Future work from the text."),
		},
		"required": []string{
			"title", "authors", "summary", "comprehension_aid",
			"connection_mapping", "key_insights", "concept_explanations",
			"critical_analysis", "future_work",
		},
	}
}

func stringProp(description string) map[string]any {
	p := map[string]any{"type": "string"}
	if description != "" {
		p["description"] = description
	}
	return p
}

func stringListProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": "string"},
	}
}

func listProp(description string, items map[string]any) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       items,
	}
}

func objectProp(description string, props map[string]any, required []string) map[string]any {
	p := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
	if description != "" {
		p["description"] = description
	}
	return p
}
