package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/config"
	"github.com/sparevest/roundup/internal/model"
	"github.com/sparevest/roundup/internal/rules"
	"github.com/sparevest/roundup/internal/storage"
)

// initStorage opens the database, runs migrations, and seeds the default
// rule table on first use.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/roundup/roundup.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("failed to open database at %s", dbPath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedDefaultRules(ctx, store); err != nil {
		return nil, err
	}

	return store, nil
}

// seedDefaultRules loads the built-in rule table into an empty database.
func seedDefaultRules(ctx context.Context, store *storage.SQLiteStorage) error {
	existing, err := store.GetRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, rule := range rules.DefaultRules() {
		if err := store.SaveRule(ctx, &rule); err != nil {
			return fmt.Errorf("failed to seed rule %q: %w", rule.Pattern, err)
		}
	}

	slog.Debug("seeded default mapping rules", "count", len(rules.DefaultRules()))
	return nil
}

// loadRuleStore builds the in-memory rule store from the database.
func loadRuleStore(ctx context.Context, store *storage.SQLiteStorage, logger *slog.Logger) (*rules.Store, error) {
	persisted, err := store.GetRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	ruleStore, err := rules.NewStore(logger, persisted...)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule store: %w", err)
	}
	return ruleStore, nil
}

// persistRuleUsage writes the in-memory usage counters accumulated during a
// batch back to the database.
func persistRuleUsage(ctx context.Context, store *storage.SQLiteStorage, ruleStore *rules.Store) error {
	for _, rule := range ruleStore.Snapshot() {
		if rule.UsageCount == 0 {
			continue
		}
		if err := store.UpdateRuleUsage(ctx, rule.Pattern, rule.MatchType, rule.UsageCount); err != nil {
			return fmt.Errorf("failed to persist usage for rule %q: %w", rule.Pattern, err)
		}
	}
	return nil
}

// parseAccountType resolves a CLI account-type flag to the closed enum.
func parseAccountType(s string) (model.AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual":
		return model.AccountIndividual, nil
	case "family":
		return model.AccountFamily, nil
	case "business":
		return model.AccountBusiness, nil
	default:
		return "", fmt.Errorf("unknown account type %q (expected individual, family, or business)", s)
	}
}

// parseItem parses an --item flag of the form "name", "name:SYMBOL:0.9".
func parseItem(s string) (model.Item, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		return model.Item{Name: parts[0]}, nil
	case 3:
		var confidence float64
		if _, err := fmt.Sscanf(parts[2], "%f", &confidence); err != nil {
			return model.Item{}, fmt.Errorf("invalid item confidence %q: %w", parts[2], err)
		}
		return model.Item{
			Name: parts[0],
			BrandGuess: &model.BrandGuess{
				Symbol:     strings.ToUpper(parts[1]),
				Confidence: confidence,
			},
		}, nil
	default:
		return model.Item{}, fmt.Errorf("invalid item %q (expected \"name\" or \"name:SYMBOL:confidence\")", s)
	}
}
