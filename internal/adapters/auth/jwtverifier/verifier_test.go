package jwtverifier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := New("s3cret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	fixed := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	tok, err := v.Sign("agent-1", "nursery-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.UserID != "agent-1" || c.NurseryID != "nursery-1" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestVerifier_Expired(t *testing.T) {
	v, _ := New("s3cret")
	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return issued }
	tok, err := v.Sign("agent-1", "", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	v.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := v.Verify(context.Background(), tok); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	a, _ := New("one")
	b, _ := New("two")
	tok, err := a.Sign("agent-1", "", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := b.Verify(context.Background(), tok); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNew_EmptySecret(t *testing.T) {
	if _, err := New("  "); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	v, _ := New("s3cret")
	if _, err := v.Verify(context.Background(), " "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}
