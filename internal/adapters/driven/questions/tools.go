package questions

import "github.com/custodia-labs/quest-cli/internal/core/ports/driven"

// Function schemas the model is asked to call.

var generateQuestionsTool = &driven.ToolSpec{
	Name:        "generate_questions",
	Description: "Generate research questions based on the provided text",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "Array of research questions",
				"items": map[string]any{
					"type":        "string",
					"description": "A specific research question",
				},
			},
		},
		"required": []string{"questions"},
	},
}

var evaluateQuestionsTool = &driven.ToolSpec{
	Name:        "evaluate_questions",
	Description: "Evaluate if research questions have been answered in the text",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"evaluations": map[string]any{
				"type":        "array",
				"description": "Array of question evaluations",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionId": map[string]any{
							"type":        "string",
							"description": "ID of the question being evaluated",
						},
						"isAnswered": map[string]any{
							"type":        "boolean",
							"description": "Whether the question is fully answered in the text",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Brief explanation of why the question is considered answered or not",
						},
					},
					"required": []string{"questionId", "isAnswered", "explanation"},
				},
			},
		},
		"required": []string{"evaluations"},
	},
}

var breakdownQuestionTool = &driven.ToolSpec{
	Name:        "breakdown_question",
	Description: "Split a research question into smaller sub-questions",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "Sub-questions that together cover the original question",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required": []string{"questions"},
	},
}

var rankContextTool = &driven.ToolSpec{
	Name:        "rank_context",
	Description: "Return the passage of the text most relevant to the question",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"excerpt": map[string]any{
				"type":        "string",
				"description": "Verbatim passage from the text",
			},
		},
		"required": []string{"excerpt"},
	},
}

// Replies are decoded into these.

type questionList struct {
	Questions []string `json:"questions"`
}

type excerpt struct {
	Excerpt string `json:"excerpt"`
}
