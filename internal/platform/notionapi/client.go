// Package notionapi implements remote.MirrorClient against the workspace
// app's REST API. Each local entity kind maps to one remote collection;
// mirrors are rows in that collection.
package notionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/remote"
)

// Compile-time check that Client implements remote.MirrorClient.
var _ remote.MirrorClient = (*Client)(nil)

// Client talks to the remote workspace over HTTP.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the workspace API at baseURL. timeout
// bounds each request; zero means 30 seconds.
func NewClient(baseURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: timeout},
		logger:  log.With(slog.String("component", "notionapi")),
	}
}

// row is the wire shape of a mirror.
type row struct {
	ID             string     `json:"id,omitempty"`
	LocalID        string     `json:"local_id,omitempty"`
	Name           string     `json:"name"`
	Archived       bool       `json:"archived"`
	Status         string     `json:"status,omitempty"`
	ActionableDate *time.Time `json:"actionable_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Difficulty     string     `json:"difficulty,omitempty"`
	Eisenhower     string     `json:"eisenhower,omitempty"`
	Period         string     `json:"period,omitempty"`
	Suspended      bool       `json:"suspended,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	LastEditedAt   time.Time  `json:"last_edited_at,omitempty"`
}

type listResponse struct {
	Rows       []row  `json:"rows"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// CreateMirror creates a remote row and returns its id.
func (c *Client) CreateMirror(ctx context.Context, m remote.Mirror) (string, error) {
	var created row
	path := fmt.Sprintf("/v1/collections/%s/rows", m.Kind)
	if err := c.do(ctx, http.MethodPost, path, toRow(m), &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("create returned no row id")
	}
	return created.ID, nil
}

// UpdateMirror overwrites the remote row's fields.
func (c *Client) UpdateMirror(ctx context.Context, remoteID string, m remote.Mirror) error {
	path := fmt.Sprintf("/v1/collections/%s/rows/%s", m.Kind, url.PathEscape(remoteID))
	return c.do(ctx, http.MethodPatch, path, toRow(m), nil)
}

// ArchiveMirror archives the remote row. A missing row is treated as
// already archived.
func (c *Client) ArchiveMirror(ctx context.Context, kind domain.EntityKind, remoteID string) error {
	path := fmt.Sprintf("/v1/collections/%s/rows/%s/archive", kind, url.PathEscape(remoteID))
	err := c.do(ctx, http.MethodPost, path, nil, nil)
	if errors.Is(err, remote.ErrMirrorNotFound) {
		return nil
	}
	return err
}

// FindMirror retrieves one remote row.
func (c *Client) FindMirror(ctx context.Context, kind domain.EntityKind, remoteID string) (*remote.Mirror, error) {
	var found row
	path := fmt.Sprintf("/v1/collections/%s/rows/%s", kind, url.PathEscape(remoteID))
	if err := c.do(ctx, http.MethodGet, path, nil, &found); err != nil {
		return nil, err
	}
	return fromRow(kind, found), nil
}

// ListMirrors returns every remote row in the kind's collection,
// following pagination cursors.
func (c *Client) ListMirrors(ctx context.Context, kind domain.EntityKind) ([]*remote.Mirror, error) {
	var mirrors []*remote.Mirror
	cursor := ""
	for {
		path := fmt.Sprintf("/v1/collections/%s/rows", kind)
		if cursor != "" {
			path += "?cursor=" + url.QueryEscape(cursor)
		}
		var page listResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Rows {
			mirrors = append(mirrors, fromRow(kind, r))
		}
		if page.NextCursor == "" {
			return mirrors, nil
		}
		cursor = page.NextCursor
	}
}

// do performs one API request, mapping transport failures to
// ErrRemoteUnavailable and 404 to ErrMirrorNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", remote.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return remote.ErrMirrorNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", remote.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func toRow(m remote.Mirror) row {
	r := row{
		Name:           m.Name,
		Archived:       m.Archived,
		Status:         m.Status,
		ActionableDate: m.ActionableDate,
		DueDate:        m.DueDate,
		Difficulty:     m.Difficulty,
		Eisenhower:     m.Eisenhower,
		Period:         m.Period,
		Suspended:      m.Suspended,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
	}
	if m.LocalID != uuid.Nil {
		r.LocalID = m.LocalID.String()
	}
	return r
}

func fromRow(kind domain.EntityKind, r row) *remote.Mirror {
	m := &remote.Mirror{
		RemoteID:       r.ID,
		Kind:           kind,
		Name:           r.Name,
		Archived:       r.Archived,
		Status:         r.Status,
		ActionableDate: r.ActionableDate,
		DueDate:        r.DueDate,
		Difficulty:     r.Difficulty,
		Eisenhower:     r.Eisenhower,
		Period:         r.Period,
		Suspended:      r.Suspended,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		LastEditedAt:   r.LastEditedAt,
	}
	if r.LocalID != "" {
		if id, err := uuid.Parse(r.LocalID); err == nil {
			m.LocalID = id
		}
	}
	return m
}
