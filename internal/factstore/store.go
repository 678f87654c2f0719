package factstore

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	CategoryLegal = "Legal Requirement"
	CategoryCosts = "Startup Costs"
	CategoryTools = "Recommended Tool"
)

// VerifiedFacts holds only database-sourced facts. Empty collections are
// the answer for unknown industries; nothing here is ever estimated.
type VerifiedFacts struct {
	LegalRequirements []string `json:"legalRequirements"`
	StartupCosts      []string `json:"startupCosts"`
	Tools             []string `json:"tools"`
}

func (f VerifiedFacts) Empty() bool {
	return len(f.LegalRequirements) == 0 && len(f.StartupCosts) == 0 && len(f.Tools) == 0
}

// Store is a read-mostly SQLite lookup of legal/cost/tooling facts keyed
// by industry string.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS verified_facts (
	industry TEXT NOT NULL,
	category TEXT NOT NULL,
	content  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verified_facts_industry ON verified_facts(industry);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Insert(ctx context.Context, industry, category, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verified_facts (industry, category, content) VALUES (?, ?, ?)`,
		industry, category, content)
	return err
}

// KeyVariants lists the lookup keys tried for a business type, in order:
// exact, uppercase, lowercase, slash-to-underscore, then the two
// slash-disambiguation halves (each in the same three casings). First
// hit wins.
func KeyVariants(businessType string) []string {
	bt := strings.TrimSpace(businessType)
	variants := []string{bt, strings.ToUpper(bt), strings.ToLower(bt)}
	if strings.Contains(bt, "/") {
		variants = append(variants, strings.ReplaceAll(bt, "/", "_"))
		parts := strings.SplitN(bt, "/", 2)
		for _, p := range parts {
			p = strings.TrimSpace(p)
			variants = append(variants, p, strings.ToUpper(p), strings.ToLower(p))
		}
	}
	out := variants[:0]
	seen := map[string]struct{}{}
	for _, v := range variants {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Lookup returns facts for the first key variant with any rows. It never
// fabricates data and never propagates store failures: an unavailable
// backing store resolves to empty collections.
func (s *Store) Lookup(ctx context.Context, businessType string) VerifiedFacts {
	for _, key := range KeyVariants(businessType) {
		facts, found, err := s.lookupExact(ctx, key)
		if err != nil {
			log.Printf("factstore lookup failed key=%q err=%v", key, err)
			return VerifiedFacts{}
		}
		if found {
			return facts
		}
	}
	return VerifiedFacts{}
}

func (s *Store) lookupExact(ctx context.Context, industry string) (VerifiedFacts, bool, error) {
	rows := []struct {
		Category string `db:"category"`
		Content  string `db:"content"`
	}{}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT category, content FROM verified_facts WHERE industry = ? ORDER BY rowid`, industry)
	if err != nil {
		return VerifiedFacts{}, false, err
	}
	if len(rows) == 0 {
		return VerifiedFacts{}, false, nil
	}
	facts := VerifiedFacts{}
	for _, row := range rows {
		switch row.Category {
		case CategoryLegal:
			facts.LegalRequirements = append(facts.LegalRequirements, row.Content)
		case CategoryCosts:
			facts.StartupCosts = append(facts.StartupCosts, row.Content)
		case CategoryTools:
			facts.Tools = append(facts.Tools, row.Content)
		}
	}
	return facts, true, nil
}
