package questions

import "github.com/custodia-labs/quest-cli/internal/core/ports/driven"

// defaultPrompts are used when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a research assistant helping to generate focused research questions.`,

	driven.PromptGenerateQuestions: `Given the following text, generate %d specific research questions that would help deepen understanding of the topic:

%s`,

	driven.PromptEvaluateQuestions: `Evaluate if each question has been thoroughly answered in the following text.
Only mark a question as answered if the text provides a complete, clear answer with supporting evidence.

Text:
%s

Questions to evaluate:
%s`,

	driven.PromptBreakdownQuestion: `Break this research question into two to four smaller questions that can each be answered on their own.

Question: %s

Text:
%s`,

	driven.PromptRankContext: `Select the passage of at most %d words from the text that is most relevant to the question. Copy it verbatim.

Question: %s

Text:
%s`,
}
