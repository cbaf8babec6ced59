package main

import (
	"testing"
	"time"

	"nursery-care-log/internal/domain/actions"
)

func TestBuildFilters(t *testing.T) {
	f, err := buildFilters("n1", "c1, c2,", "presence,diaper", "2025-03-10", "2025-03-10", time.UTC)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(f.ChildIDs) != 2 || len(f.NurseryIDs) != 1 {
		t.Fatalf("unexpected ids: %+v", f)
	}
	if len(f.Kinds) != 2 || f.Kinds[1] != actions.KindDiaper {
		t.Fatalf("unexpected kinds: %v", f.Kinds)
	}
	if !f.From.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", f.From)
	}
	if !f.To.Equal(time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("-to with a date must cover the whole day: %v", f.To)
	}
}

func TestBuildFilters_Errors(t *testing.T) {
	if _, err := buildFilters("", "", "meal", "", "", time.UTC); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if _, err := buildFilters("", "", "", "ayer", "", time.UTC); err == nil {
		t.Fatalf("expected error for bad -from")
	}
}
