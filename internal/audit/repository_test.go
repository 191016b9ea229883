package audit

import (
	"context"
	"testing"
	"time"

	"github.com/edoardob90/runits/internal/infrastructure/config"
	"github.com/edoardob90/runits/internal/infrastructure/database"

	_ "github.com/edoardob90/runits/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	entries := []*Entry{
		{Action: ActionDefine, Unit: "furlong", Source: SourceCLI, Details: map[string]any{"kind": "simple"}, CreatedAt: base},
		{Action: ActionReload, Source: SourceAPI, CreatedAt: base.Add(time.Second)},
		{Action: ActionRedefine, Unit: "furlong", Source: SourceAPI, CreatedAt: base.Add(2 * time.Second)},
		{Action: ActionRemove, Unit: "furlong", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if e.ID == "" {
			t.Error("Create() did not assign an ID")
		}
	}
	if entries[3].Source != SourceUnknown {
		t.Errorf("empty source stored as %q", entries[3].Source)
	}

	tests := []struct {
		name        string
		filter      Filter
		wantTotal   int
		wantActions []string
	}{
		{"all newest first", Filter{}, 4, []string{ActionRemove, ActionRedefine, ActionReload, ActionDefine}},
		{"by unit", Filter{Unit: "furlong"}, 3, []string{ActionRemove, ActionRedefine, ActionDefine}},
		{"by action", Filter{Action: ActionReload}, 1, []string{ActionReload}},
		{"paged", Filter{Limit: 2, Offset: 1}, 4, []string{ActionRedefine, ActionReload}},
		{"no match", Filter{Unit: "parsec"}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal || len(res.Entries) != len(tt.wantActions) {
				t.Fatalf("List() = %d entries (total %d), want %d (total %d)",
					len(res.Entries), res.Total, len(tt.wantActions), tt.wantTotal)
			}
			for i, want := range tt.wantActions {
				if res.Entries[i].Action != want {
					t.Errorf("entry %d action = %s, want %s", i, res.Entries[i].Action, want)
				}
			}
		})
	}

	res, err := repo.List(ctx, Filter{Action: ActionDefine})
	if err != nil {
		t.Fatal(err)
	}
	got := res.Entries[0]
	if got.Unit != "furlong" || got.Source != SourceCLI || got.Details["kind"] != "simple" || !got.CreatedAt.Equal(base) {
		t.Errorf("round trip = %+v", got)
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := newTestRepo(t)
	res, err := repo.List(context.Background(), Filter{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != 200 || res.Offset != 0 || res.Entries == nil {
		t.Errorf("List() = %+v", res)
	}
}

func TestCreateRejectsUnknownAction(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Create(context.Background(), &Entry{Action: "login"}); err == nil {
		t.Error("Create() accepted an action outside the CHECK constraint")
	}
}

func TestSource(t *testing.T) {
	ctx := context.Background()
	if got := SourceFrom(ctx); got != SourceUnknown {
		t.Errorf("SourceFrom(empty) = %q", got)
	}
	if got := SourceFrom(WithSource(ctx, SourceAPI)); got != SourceAPI {
		t.Errorf("SourceFrom(api) = %q", got)
	}
}
