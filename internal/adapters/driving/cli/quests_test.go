package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

func sampleQuests() []domain.Quest {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Quest{
		{ID: "aaaa1111-0000", Question: "What drives adoption?", DocumentID: "today.md",
			DocumentPath: "today.md", CreatedAt: created},
		{ID: "bbbb2222-0000", Question: "Who are the users?", DocumentID: "today.md",
			DocumentPath: "today.md", CreatedAt: created, IsCompleted: true, CompletedAt: created},
		{ID: "cccc3333-0000", Question: "Which market first?", DocumentID: "today.md",
			DocumentPath: "today.md", CreatedAt: created, IsObsolete: true,
			ObsoleteReason: domain.ObsoleteReasonContentChanged},
		{ID: "dddd4444-0000", Question: "What is the budget?", DocumentID: "today.md",
			DocumentPath: "today.md", ParentID: "aaaa1111-0000"},
	}
}

func TestRefreshCmd(t *testing.T) {
	t.Run("prints summary", func(t *testing.T) {
		quests := &mockQuestService{report: domain.RefreshReport{
			DocumentID: "today.md",
			Outcome:    domain.OutcomeUpdated,
			Completed:  []string{"a"},
			Generated:  []string{"b", "c"},
			Obsoleted:  1,
		}}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "refresh")

		require.NoError(t, err)
		assert.Contains(t, out, "Refreshed today.md")
		assert.Contains(t, out, "Completed: 1")
		assert.Contains(t, out, "Generated: 2")
		assert.Contains(t, out, "Obsolete:  1")
		assert.Equal(t, 1, quests.refreshes)
	})

	t.Run("opens path first", func(t *testing.T) {
		quests := &mockQuestService{report: domain.RefreshReport{Outcome: domain.OutcomeUpdated}}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "refresh", "/vault/projects/quest.md")

		require.NoError(t, err)
		assert.Equal(t, "projects/quest.md", quests.active)
		assert.Contains(t, out, "Active document: projects/quest.md")
	})

	t.Run("open failure skips refresh", func(t *testing.T) {
		quests := &mockQuestService{activeErr: domain.ErrNotFound}
		setupServices(t, quests, nil)

		_, _, err := execute(t, "", "refresh", "missing.md")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Zero(t, quests.refreshes)
	})

	t.Run("not configured", func(t *testing.T) {
		setupServices(t, &mockQuestService{report: domain.RefreshReport{Outcome: domain.OutcomeNotConfigured}}, nil)

		out, _, err := execute(t, "", "refresh")

		require.NoError(t, err)
		assert.Contains(t, out, "quest settings llm")
	})

	t.Run("no document", func(t *testing.T) {
		setupServices(t, &mockQuestService{report: domain.RefreshReport{Outcome: domain.OutcomeNoDocument}}, nil)

		out, _, err := execute(t, "", "refresh")

		require.NoError(t, err)
		assert.Contains(t, out, "No active document.")
	})

	t.Run("failure is an error", func(t *testing.T) {
		cause := errors.New("llm timeout")
		setupServices(t, &mockQuestService{report: domain.RefreshReport{Outcome: domain.OutcomeFailed, Err: cause}}, nil)

		_, _, err := execute(t, "", "refresh")

		assert.ErrorIs(t, err, cause)
	})

	t.Run("no service", func(t *testing.T) {
		setupServices(t, nil, nil)

		_, _, err := execute(t, "", "refresh")

		assert.ErrorContains(t, err, "quest service not configured")
	})
}

func TestListCmd(t *testing.T) {
	t.Run("defaults to active document", func(t *testing.T) {
		quests := &mockQuestService{quests: sampleQuests()[:1]}
		settings := newMockSettingsService()
		settings.settings.Vault.ActiveDocument = "today.md"
		setupServices(t, quests, settings)

		out, _, err := execute(t, "", "list")

		require.NoError(t, err)
		assert.Equal(t, driving.ListFilter{DocumentID: "today.md", ActiveOnly: true}, quests.lastFilter)
		assert.Contains(t, out, "aaaa1111")
		assert.Contains(t, out, "What drives adoption?")
		assert.NotContains(t, out, "aaaa1111-0000", "ids are shortened")
	})

	t.Run("all documents when none active", func(t *testing.T) {
		quests := &mockQuestService{quests: sampleQuests()}
		setupServices(t, quests, newMockSettingsService())

		out, _, err := execute(t, "", "list", "--all")

		require.NoError(t, err)
		assert.Equal(t, driving.ListFilter{IncludeDismissed: true}, quests.lastFilter)
		assert.Contains(t, out, "today.md", "document header")
		assert.Contains(t, out, "✓")
		assert.Contains(t, out, domain.ObsoleteReasonContentChanged)
		assert.Contains(t, out, "What is the budget?")
	})

	t.Run("document flag", func(t *testing.T) {
		quests := &mockQuestService{}
		setupServices(t, quests, newMockSettingsService())

		out, _, err := execute(t, "", "list", "--document", "/vault/other.md")

		require.NoError(t, err)
		assert.Equal(t, "other.md", quests.lastFilter.DocumentID)
		assert.Contains(t, out, "No quests found.")
	})

	t.Run("json", func(t *testing.T) {
		quests := &mockQuestService{quests: sampleQuests()[:2]}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "list", "--json")

		require.NoError(t, err)
		var decoded []domain.Quest
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, sampleQuests()[:2], decoded)
	})

	t.Run("json empty", func(t *testing.T) {
		setupServices(t, &mockQuestService{}, nil)

		out, _, err := execute(t, "", "list", "--json")

		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("store error", func(t *testing.T) {
		setupServices(t, &mockQuestService{listErr: errors.New("locked")}, nil)

		_, _, err := execute(t, "", "list")

		assert.ErrorContains(t, err, "locked")
	})
}

func TestDismissCmd(t *testing.T) {
	t.Run("by prefix", func(t *testing.T) {
		quests := &mockQuestService{quests: sampleQuests()}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "dismiss", "cccc")

		require.NoError(t, err)
		assert.Equal(t, "cccc3333-0000", quests.dismissed)
		assert.Contains(t, out, "Dismissed: Which market first?")
	})

	t.Run("unknown", func(t *testing.T) {
		setupServices(t, &mockQuestService{quests: sampleQuests()}, nil)

		_, _, err := execute(t, "", "dismiss", "zzzz")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ambiguous", func(t *testing.T) {
		quests := &mockQuestService{quests: []domain.Quest{{ID: "ab1"}, {ID: "ab2"}}}
		setupServices(t, quests, nil)

		_, _, err := execute(t, "", "dismiss", "ab")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, quests.dismissed)
	})

	t.Run("exact id wins over prefix", func(t *testing.T) {
		quests := &mockQuestService{quests: []domain.Quest{{ID: "ab"}, {ID: "abc"}}}
		setupServices(t, quests, nil)

		_, _, err := execute(t, "", "dismiss", "ab")

		require.NoError(t, err)
		assert.Equal(t, "ab", quests.dismissed)
	})
}

func TestBreakdownCmd(t *testing.T) {
	t.Run("prints children", func(t *testing.T) {
		quests := &mockQuestService{
			quests: sampleQuests(),
			children: []domain.Quest{
				{ID: "eeee5555-0000", Question: "Which segment?", ParentID: "aaaa1111-0000"},
			},
		}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "breakdown", "aaaa")

		require.NoError(t, err)
		assert.Equal(t, "aaaa1111-0000", quests.brokenDown)
		assert.Contains(t, out, "What drives adoption?")
		assert.Contains(t, out, "Which segment?")
	})

	t.Run("unsupported", func(t *testing.T) {
		setupServices(t, &mockQuestService{quests: sampleQuests(), breakdownErr: domain.ErrBreakdownUnsupported}, nil)

		_, _, err := execute(t, "", "breakdown", "aaaa")

		assert.ErrorContains(t, err, "quest settings llm")
	})
}

func TestClearCmd(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		quests := &mockQuestService{quests: sampleQuests()}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "y\n", "clear")

		require.NoError(t, err)
		assert.Contains(t, out, "Delete all 4 quests?")
		assert.True(t, quests.cleared)
	})

	t.Run("declined", func(t *testing.T) {
		quests := &mockQuestService{quests: sampleQuests()}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "\n", "clear")

		require.NoError(t, err)
		assert.Contains(t, out, "Cancelled.")
		assert.False(t, quests.cleared)
	})

	t.Run("yes flag skips prompt", func(t *testing.T) {
		quests := &mockQuestService{}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "clear", "--yes")

		require.NoError(t, err)
		assert.NotContains(t, out, "[y/N]")
		assert.True(t, quests.cleared)
	})

	t.Run("nothing to clear", func(t *testing.T) {
		quests := &mockQuestService{}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "clear")

		require.NoError(t, err)
		assert.Contains(t, out, "No quests to clear.")
		assert.False(t, quests.cleared)
	})
}

func TestOpenCmd(t *testing.T) {
	t.Run("sets active document", func(t *testing.T) {
		quests := &mockQuestService{}
		setupServices(t, quests, nil)

		out, _, err := execute(t, "", "open", "/vault/today.md")

		require.NoError(t, err)
		assert.Equal(t, "today.md", quests.active)
		assert.Contains(t, out, "Active document: today.md")
		assert.Zero(t, quests.refreshes)
	})

	t.Run("no vault", func(t *testing.T) {
		setupServices(t, &mockQuestService{}, nil)
		documents = nil

		_, _, err := execute(t, "", "open", "today.md")

		assert.ErrorContains(t, err, "no vault configured")
	})

	t.Run("resolver rejects path", func(t *testing.T) {
		setupServices(t, &mockQuestService{}, nil)
		documents = &mockResolver{err: domain.ErrInvalidInput}

		_, _, err := execute(t, "", "open", "../escape.md")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "12345678", shortID("123456789abc"))
}
