package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/model"
)

func TestStore_Add(t *testing.T) {
	tests := []struct {
		name    string
		rule    model.MappingRule
		wantErr error
	}{
		{
			name: "valid exact rule",
			rule: model.MappingRule{
				Pattern:        "Starbucks",
				Ticker:         "sbux",
				MatchType:      model.MatchExact,
				BaseConfidence: 0.98,
			},
		},
		{
			name: "valid regex rule",
			rule: model.MappingRule{
				Pattern:        `uber\s*trip`,
				Ticker:         "UBER",
				MatchType:      model.MatchRegex,
				BaseConfidence: 0.94,
			},
		},
		{
			name: "empty pattern",
			rule: model.MappingRule{
				Ticker:         "SBUX",
				MatchType:      model.MatchExact,
				BaseConfidence: 0.9,
			},
			wantErr: common.ErrInvalidRule,
		},
		{
			name: "empty ticker",
			rule: model.MappingRule{
				Pattern:        "starbucks",
				MatchType:      model.MatchExact,
				BaseConfidence: 0.9,
			},
			wantErr: common.ErrInvalidRule,
		},
		{
			name: "confidence above one",
			rule: model.MappingRule{
				Pattern:        "starbucks",
				Ticker:         "SBUX",
				MatchType:      model.MatchExact,
				BaseConfidence: 1.2,
			},
			wantErr: common.ErrInvalidRule,
		},
		{
			name: "negative confidence",
			rule: model.MappingRule{
				Pattern:        "starbucks",
				Ticker:         "SBUX",
				MatchType:      model.MatchExact,
				BaseConfidence: -0.1,
			},
			wantErr: common.ErrInvalidRule,
		},
		{
			name: "unknown match type",
			rule: model.MappingRule{
				Pattern:        "starbucks",
				Ticker:         "SBUX",
				MatchType:      model.MatchType("SOUNDEX"),
				BaseConfidence: 0.9,
			},
			wantErr: common.ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(nil)
			require.NoError(t, err)

			err = store.Add(tt.rule)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, store.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, store.Len())
		})
	}
}

func TestStore_AddNormalizesPatternAndTicker(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)

	require.NoError(t, store.Add(model.MappingRule{
		Pattern:        "  StarBucks  ",
		Ticker:         " sbux ",
		MatchType:      model.MatchExact,
		BaseConfidence: 0.98,
	}))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "starbucks", snapshot[0].Pattern)
	assert.Equal(t, "SBUX", snapshot[0].Ticker)
	assert.False(t, snapshot[0].CreatedAt.IsZero())
}

func TestStore_AddDuplicate(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)

	rule := model.MappingRule{
		Pattern:        "starbucks",
		Ticker:         "SBUX",
		MatchType:      model.MatchExact,
		BaseConfidence: 0.98,
	}
	require.NoError(t, store.Add(rule))

	err = store.Add(rule)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	// Same pattern under a different match type is a distinct rule.
	rule.MatchType = model.MatchRegex
	assert.NoError(t, store.Add(rule))
}

func TestStore_MalformedRegexIsKeptButSkipped(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)

	require.NoError(t, store.Add(model.MappingRule{
		Pattern:        "([unclosed",
		Ticker:         "BAD",
		MatchType:      model.MatchRegex,
		BaseConfidence: 0.9,
	}))

	// The rule stays in the table for the administrator to see...
	assert.Equal(t, 1, store.Len())
	// ...but never participates in matching.
	assert.Empty(t, store.RegexRules())
}

func TestStore_RegexRules(t *testing.T) {
	store, err := NewStore(nil,
		model.MappingRule{Pattern: "starbucks", Ticker: "SBUX", MatchType: model.MatchExact, BaseConfidence: 0.98},
		model.MappingRule{Pattern: `uber\s*trip`, Ticker: "UBER", MatchType: model.MatchRegex, BaseConfidence: 0.94},
	)
	require.NoError(t, err)

	compiled := store.RegexRules()
	require.Len(t, compiled, 1)
	assert.Equal(t, "UBER", compiled[0].Rule.Ticker)
	assert.True(t, compiled[0].Re.MatchString("UBER TRIP HELP.UBER.COM"))
}

func TestStore_RuleForTicker(t *testing.T) {
	store, err := NewStore(nil,
		model.MappingRule{Pattern: "nike", Ticker: "NKE", Category: "Apparel", MatchType: model.MatchExact, BaseConfidence: 0.95},
	)
	require.NoError(t, err)

	rule, ok := store.RuleForTicker("nke")
	require.True(t, ok)
	assert.Equal(t, "Apparel", rule.Category)

	_, ok = store.RuleForTicker("ZZZT")
	assert.False(t, ok)

	_, ok = store.RuleForTicker("")
	assert.False(t, ok)
}

func TestStore_RecordUse(t *testing.T) {
	store, err := NewStore(nil,
		model.MappingRule{Pattern: "starbucks", Ticker: "SBUX", MatchType: model.MatchExact, BaseConfidence: 0.98},
	)
	require.NoError(t, err)

	store.RecordUse("starbucks", model.MatchExact)
	store.RecordUse("starbucks", model.MatchExact)
	// Unknown pattern is a silent no-op.
	store.RecordUse("nope", model.MatchExact)

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(2), snapshot[0].UsageCount)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, err := NewStore(nil, DefaultRules()...)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.RecordUse("starbucks", model.MatchExact)
				_ = store.ExactRules()
				_ = store.RegexRules()
				_, _ = store.RuleForTicker("SBUX")
			}
		}()
	}
	wg.Wait()

	rule := findRule(t, store, "starbucks", model.MatchExact)
	// Increments go through the store lock, so none are lost.
	assert.Equal(t, int64(1600), rule.UsageCount)
}

func TestDefaultRules_AllValid(t *testing.T) {
	store := NewDefaultStore(nil)
	assert.Equal(t, len(DefaultRules()), store.Len())

	for _, rule := range store.Snapshot() {
		assert.GreaterOrEqual(t, rule.BaseConfidence, 0.0)
		assert.LessOrEqual(t, rule.BaseConfidence, 1.0)
		assert.NotEmpty(t, rule.Ticker)
	}
}

func findRule(t *testing.T, store *Store, pattern string, matchType model.MatchType) model.MappingRule {
	t.Helper()
	for _, rule := range store.Snapshot() {
		if rule.Pattern == pattern && rule.MatchType == matchType {
			return rule
		}
	}
	t.Fatalf("rule %q not found", pattern)
	return model.MappingRule{}
}
