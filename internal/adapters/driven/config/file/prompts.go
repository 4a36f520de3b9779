package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk, falling
// back to embedded defaults.
//
// Files are created lazily on the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written out as the initial prompt files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a research assistant helping a writer deepen their notes by generating focused research questions and checking whether the notes answer them.`,

	driven.PromptGenerateQuestions: `Given the following text, generate %d specific research questions that would help deepen understanding of the topic.
Each question must be answerable by further writing in the same document. Do not repeat questions the text already answers.

Text:
%s`,

	driven.PromptEvaluateQuestions: `Evaluate whether each question has been thoroughly answered in the following text.
Only mark a question as answered if the text provides a complete, clear answer with supporting evidence.
A question is NOT answered if the answer is partial or incomplete, if the text only tangentially relates to the question, or if it requires information not present in the text.
Return one evaluation per question, using the id shown in brackets.

Text:
%s

Questions to evaluate:
%s`,

	driven.PromptBreakdownQuestion: `Break the following research question into two to four smaller questions that can each be answered on their own.
Together the smaller questions should cover the original one.

Question: %s

Text:
%s`,

	driven.PromptRankContext: `Select the passage of at most %d words from the text below that is most relevant to the question.
Copy the passage verbatim without commentary.

Question: %s

Text:
%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.quest/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".quest", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// DefaultPrompt returns the embedded template for name, if there is one.
func DefaultPrompt(name string) (string, bool) {
	prompt, ok := defaultPrompts[name]
	return prompt, ok
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file cannot be read.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = errors.New("empty file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent load wins consistently.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and any missing default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Quest Prompts

This directory contains the prompts quest sends to the configured LLM.

## Files

- ` + "`system.txt`" + ` - System prompt shared by every request
- ` + "`generate_questions.txt`" + ` - Generates new research questions (%d count, %s text)
- ` + "`evaluate_questions.txt`" + ` - Judges whether questions are answered (%s text, %s questions)
- ` + "`breakdown_question.txt`" + ` - Splits a question into sub-questions (%s question, %s text)
- ` + "`rank_context.txt`" + ` - Picks the passage a question was generated from (%d words, %s question, %s text)

## Customisation

Edit any file to change the wording. Changes take effect on the next command,
or on the next refresh while ` + "`quest watch`" + ` is running.

Keep the placeholders in the order listed above. Delete a file to restore its
default.
`
	return os.WriteFile(path, []byte(content), 0600)
}
