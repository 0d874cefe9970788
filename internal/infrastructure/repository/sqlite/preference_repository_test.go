package sqlite

import (
	"context"
	"testing"
)

func newTestRepository(t *testing.T) *PreferenceRepository {
	t.Helper()

	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewPreferenceRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return repo
}

func TestPreferenceRepositoryGetMissingChatReturnsDefaults(t *testing.T) {
	repo := newTestRepository(t)

	pref, err := repo.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pref != nil {
		t.Fatalf("expected no stored preference, got %+v", pref)
	}
}

func TestPreferenceRepositoryUpsertsAreIndependent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SetPipeline(ctx, 42, "rag_ranker"); err != nil {
		t.Fatalf("SetPipeline() error = %v", err)
	}
	if err := repo.SetVerbose(ctx, 42, true); err != nil {
		t.Fatalf("SetVerbose() error = %v", err)
	}

	pref, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pref == nil {
		t.Fatalf("expected stored preference")
	}
	if pref.Pipeline == nil || *pref.Pipeline != "rag_ranker" {
		t.Fatalf("expected pipeline rag_ranker, got %v", pref.Pipeline)
	}
	if pref.Verbose == nil || !*pref.Verbose {
		t.Fatalf("expected verbose true, got %v", pref.Verbose)
	}

	// Changing the pipeline must not clobber verbosity.
	if err := repo.SetPipeline(ctx, 42, "baseline"); err != nil {
		t.Fatalf("SetPipeline() error = %v", err)
	}
	pref, err = repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pref == nil {
		t.Fatalf("expected stored preference")
	}
	if pref.Pipeline == nil || *pref.Pipeline != "baseline" {
		t.Fatalf("expected pipeline baseline, got %v", pref.Pipeline)
	}
	if pref.Verbose == nil || !*pref.Verbose {
		t.Fatalf("expected verbose to survive pipeline update, got %v", pref.Verbose)
	}
}

func TestPreferenceRepositoryChatsAreIsolated(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SetVerbose(ctx, 1, true); err != nil {
		t.Fatalf("SetVerbose() error = %v", err)
	}

	pref, err := repo.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pref != nil {
		t.Fatalf("expected chat 2 untouched, got %+v", pref)
	}
}
