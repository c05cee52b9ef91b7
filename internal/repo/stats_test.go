package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

func TestPersonasStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := PersonasStats(context.Background(), db, "u1"); err == nil {
		t.Fatalf("expected error due to missing personas table")
	}
}

func TestPersonasStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Persona{})
	count, maxAt, err := PersonasStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("PersonasStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestPersonasStats_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Persona{})
	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for u1
	t3 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)   // other user

	seedPersona(t, db, "p1", "u1", t1)
	seedPersona(t, db, "p2", "u1", t2)
	seedPersona(t, db, "p3", "u2", t3)

	count, maxAt, err := PersonasStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("PersonasStats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected maxUpdatedAt %v, got %v", t2, maxAt)
	}

	// A delete must change the stats so cached listings are invalidated.
	if err := DeletePersona(context.Background(), db, "p1", "u1"); err != nil {
		t.Fatalf("DeletePersona: %v", err)
	}
	count, _, err = PersonasStats(context.Background(), db, "u1")
	if err != nil || count != 1 {
		t.Fatalf("after delete count = %d, %v; want 1", count, err)
	}
}

func TestPersonasStats_SelectLatest_ErrorPath(t *testing.T) {
	db := newTestDB(t, &domain.Persona{})
	seedPersona(t, db, "px", "uerr", time.Now().UTC())

	if err := db.Exec(`ALTER TABLE personas RENAME COLUMN updated_at TO updated_at_old`).Error; err != nil {
		t.Fatalf("rename column: %v", err)
	}
	if _, _, err := PersonasStats(context.Background(), db, "uerr"); err == nil {
		t.Fatalf("expected error from latest-updated select after column rename")
	}
}
