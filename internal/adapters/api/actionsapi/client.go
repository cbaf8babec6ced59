package actionsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("actions api client not configured")
	ErrUnauthorized  = errors.New("actions api unauthorized")
)

// Config del cliente de la API de acciones.
// Token viene de la sesión del operador; DebugUserID solo para backends en modo dev.
type Config struct {
	BaseURL     string
	Token       string
	DebugUserID string
	Timeout     time.Duration
}

// Client implementa actions.Repository contra /actions.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	hc.Headers = map[string]string{}
	if t := strings.TrimSpace(cfg.Token); t != "" {
		hc.Headers["Authorization"] = "Bearer " + t
	}
	if uid := strings.TrimSpace(cfg.DebugUserID); uid != "" {
		hc.Headers["X-Debug-User-ID"] = uid
	}
	return &Client{http: hc}, nil
}

// NewWithHTTP permite inyectar un httpclient ya configurado (tests).
func NewWithHTTP(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

func (c *Client) Create(ctx context.Context, a actions.Action) (actions.Action, error) {
	body, err := actions.Encode(a)
	if err != nil {
		return actions.Action{}, actions.WithEntity("create", a.ChildID, "", err)
	}

	var out actions.Record
	err = c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/actions",
		In:     body,
		Out:    &out,
	})
	if err != nil {
		return actions.Action{}, actions.WithEntity("create", a.ChildID, "", mapError(err))
	}
	return decode("create", a.ChildID, out)
}

func (c *Client) Update(ctx context.Context, a actions.Action) (actions.Action, error) {
	id := strings.TrimSpace(a.ID)
	if id == "" {
		return actions.Action{}, actions.WithEntity("update", a.ChildID, "", fmt.Errorf("%w: id required", actions.ErrValidation))
	}
	body, err := actions.Encode(a)
	if err != nil {
		return actions.Action{}, actions.WithEntity("update", a.ChildID, id, err)
	}

	var out actions.Record
	err = c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   "/actions/" + url.PathEscape(id),
		In:     body,
		Out:    &out,
	})
	if err != nil {
		return actions.Action{}, actions.WithEntity("update", a.ChildID, id, mapError(err))
	}
	return decode("update", a.ChildID, out)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return actions.WithEntity("delete", "", "", fmt.Errorf("%w: id required", actions.ErrValidation))
	}
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   "/actions/" + url.PathEscape(id),
	})
	if err != nil {
		return actions.WithEntity("delete", "", id, mapError(err))
	}
	return nil
}

func (c *Client) List(ctx context.Context, filter actions.Filter) ([]actions.Record, error) {
	var out []actions.Record
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/actions",
		Query:  FilterQuery(filter),
		Out:    &out,
	})
	if err != nil {
		return nil, mapError(err)
	}
	if out == nil {
		out = []actions.Record{}
	}
	return out, nil
}

// FilterQuery traduce el filtro a los parámetros del contrato:
// nursery_structures[], actions[], children[], agents[], start_date_time,
// end_date_time, state.
func FilterQuery(f actions.Filter) url.Values {
	q := url.Values{}
	for _, id := range f.NurseryIDs {
		q.Add("nursery_structures[]", id)
	}
	for _, k := range f.Kinds {
		q.Add("actions[]", string(k))
	}
	for _, id := range f.ChildIDs {
		q.Add("children[]", id)
	}
	for _, id := range f.AgentIDs {
		q.Add("agents[]", id)
	}
	if f.From != nil {
		q.Set("start_date_time", f.From.UTC().Format(time.RFC3339Nano))
	}
	if f.To != nil {
		q.Set("end_date_time", f.To.UTC().Format(time.RFC3339Nano))
	}
	if f.OpenOnly {
		q.Set("state", actions.StateInProgress)
	}
	return q
}

func decode(op, childID string, rec actions.Record) (actions.Action, error) {
	a, err := actions.Decode(rec)
	if err != nil {
		return actions.Action{}, actions.WithEntity(op, childID, "", fmt.Errorf("%w: invalid response: %v", actions.ErrNetwork, err))
	}
	return a, nil
}

// mapError traduce errores HTTP a la taxonomía del dominio.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, httpclient.ErrTransport) {
		return fmt.Errorf("%w: %v", actions.ErrNetwork, err)
	}

	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return fmt.Errorf("%w: %v", actions.ErrNetwork, err)
	}
	switch {
	case he.StatusCode == http.StatusBadRequest || he.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", actions.ErrValidation, he.Body)
	case he.StatusCode == http.StatusNotFound:
		return actions.ErrNotFound
	case he.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", actions.ErrConflict, he.Body)
	case he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: status=%d", actions.ErrNetwork, he.StatusCode)
	}
}
