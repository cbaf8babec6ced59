package actionsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/domain/actions/details"
)

func TestClient_List_SendsFilterQuery(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a1","action_type":"diaper","child_id":"c1"}]`))
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	recs, err := c.List(context.Background(), actions.Filter{
		NurseryIDs: []string{"n1"},
		ChildIDs:   []string{"c1", "c2"},
		Kinds:      []actions.Kind{actions.KindPresence},
		From:       &from,
		OpenOnly:   true,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0]["id"] != "a1" {
		t.Fatalf("unexpected records: %v", recs)
	}

	q := got.URL.Query()
	if len(q["children[]"]) != 2 || q.Get("nursery_structures[]") != "n1" || q.Get("actions[]") != "presence" {
		t.Fatalf("unexpected query: %s", got.URL.RawQuery)
	}
	if q.Get("start_date_time") != "2025-03-10T00:00:00Z" || q.Get("state") != actions.StateInProgress {
		t.Fatalf("unexpected query: %s", got.URL.RawQuery)
	}
	if got.Header.Get("Authorization") != "Bearer tok" {
		t.Fatalf("missing bearer token")
	}
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, actions.ErrValidation},
		{http.StatusUnprocessableEntity, actions.ErrValidation},
		{http.StatusNotFound, actions.ErrNotFound},
		{http.StatusConflict, actions.ErrConflict},
		{http.StatusBadGateway, actions.ErrNetwork},
		{http.StatusUnauthorized, ErrUnauthorized},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		c, _ := NewClient(Config{BaseURL: ts.URL})

		_, err := c.Update(context.Background(), actions.Action{
			ID: "a1", ChildID: "c1", NurseryID: "n1", Kind: actions.KindDiaper, StartAgentID: "agent-1",
			Diaper: &details.Diaper{Quality: details.DiaperQualitySoft},
		})
		ts.Close()

		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var ae *actions.Error
		if !errors.As(err, &ae) || ae.ChildID != "c1" || ae.ActionID != "a1" {
			t.Fatalf("status %d: expected entity in error, got %v", tc.status, err)
		}
	}
}

func TestClient_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, _ := NewClient(Config{BaseURL: url, Timeout: time.Second})
	err := c.Delete(context.Background(), "a1")
	if !errors.Is(err, actions.ErrNetwork) || !actions.Retryable(err) {
		t.Fatalf("expected retryable ErrNetwork, got %v", err)
	}
}

func TestClient_Create_DecodesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/actions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Debug-User-ID") != "agent-1" {
			t.Errorf("missing debug header")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"a9","child_id":"c1","nursery_id":"n1","action_type":"care",
			"start_agent_id":"agent-1","created_at":"2025-03-10T10:00:00Z","care":{"care_types":["eye"]}}`))
	}))
	defer ts.Close()

	c, _ := NewClient(Config{BaseURL: ts.URL, DebugUserID: "agent-1"})
	got, err := c.Create(context.Background(), actions.Action{
		ChildID: "c1", NurseryID: "n1", Kind: actions.KindCare, StartAgentID: "agent-1",
		Care: &details.Care{Types: []details.CareType{details.CareTypeEye}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "a9" || got.Care == nil || len(got.Care.Types) != 1 {
		t.Fatalf("unexpected action: %+v", got)
	}
}

func TestNewClient_NotConfigured(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFilterQuery_KeepsSubSecondBounds(t *testing.T) {
	from := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 17, 30, 0, 900_000_000, time.UTC)

	q := FilterQuery(actions.Filter{From: &from, To: &to})
	if got := q.Get("end_date_time"); got != "2025-03-10T17:30:00.9Z" {
		t.Fatalf("unexpected end_date_time %q", got)
	}
	if got := q.Get("start_date_time"); got != "2025-03-10T08:00:00Z" {
		t.Fatalf("unexpected start_date_time %q", got)
	}

	parsed, err := time.Parse(time.RFC3339, q.Get("end_date_time"))
	if err != nil || !parsed.Equal(to) {
		t.Fatalf("server side parse lost precision: %v %v", parsed, err)
	}
}
