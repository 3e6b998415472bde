package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/crashgate-io/crashgate/internal/model"
)

const restRequestTimeout = 10 * time.Second

// RESTStore talks to a hosted relational store over its SQL-over-HTTP API:
// one POST per statement, bearer-token authenticated, body
// {"sql": "...", "params": [...]}. Placeholders are "?", positional.
type RESTStore struct {
	endpoint string
	token    string
	client   *http.Client
	log      zerolog.Logger
}

// NewREST returns a RESTStore for endpoint/token. Both may be empty; calls on
// an unconfigured store fail with ErrNotConfigured.
func NewREST(endpoint, token string, log zerolog.Logger) *RESTStore {
	return &RESTStore{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: restRequestTimeout},
		log:      log,
	}
}

type restQuery struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

type restResult struct {
	Success bool             `json:"success"`
	Results []map[string]any `json:"results"`
	Error   string           `json:"error"`
}

// Insert implements Store.
func (s *RESTStore) Insert(ctx context.Context, r *model.CrashReport) error {
	var specs any
	if len(r.HardwareSpecs) > 0 {
		specs = string(r.HardwareSpecs)
	}
	_, err := s.exec(ctx, `INSERT INTO crash_reports
		(id, app_name, app_version, platform, crash_timestamp, error_message, stack_trace, hardware_specs, user_id, session_id, ip_hash, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AppName, r.AppVersion, r.Platform,
		r.CrashTimestamp.UTC().Format(time.RFC3339),
		nullable(r.ErrorMessage), nullable(r.StackTrace), specs,
		nullable(r.UserID), nullable(r.SessionID), r.IPHash,
		r.ReceivedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// List implements Store.
func (s *RESTStore) List(ctx context.Context, q model.ReportQuery) ([]model.StoredReport, error) {
	sql := `SELECT id, app_name, app_version, platform, crash_timestamp, error_message, stack_trace, hardware_specs, user_id, session_id, received_at
		FROM crash_reports WHERE app_name = ? AND crash_timestamp >= ?`
	params := []any{q.AppName, sinceParam(q.Days)}
	if q.Version != "" {
		sql += ` AND app_version = ?`
		params = append(params, q.Version)
	}
	sql += ` ORDER BY crash_timestamp DESC LIMIT ? OFFSET ?`
	params = append(params, q.Limit, q.Offset)

	res, err := s.exec(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	reports := make([]model.StoredReport, 0, len(res.Results))
	for _, row := range res.Results {
		reports = append(reports, model.StoredReport{
			ID:             asString(row["id"]),
			AppName:        asString(row["app_name"]),
			AppVersion:     asString(row["app_version"]),
			Platform:       asString(row["platform"]),
			CrashTimestamp: asTime(row["crash_timestamp"]),
			ErrorMessage:   asString(row["error_message"]),
			StackTrace:     asString(row["stack_trace"]),
			HardwareSpecs:  asRawJSON(row["hardware_specs"]),
			UserID:         asString(row["user_id"]),
			SessionID:      asString(row["session_id"]),
			ReceivedAt:     asTime(row["received_at"]),
		})
	}
	return reports, nil
}

// Summary implements Store.
func (s *RESTStore) Summary(ctx context.Context, appName string, days int) ([]model.SummaryRow, error) {
	res, err := s.exec(ctx, `SELECT app_version, platform, date(crash_timestamp) AS day, COUNT(*) AS crashes
		FROM crash_reports WHERE app_name = ? AND crash_timestamp >= ?
		GROUP BY app_version, platform, day
		ORDER BY day DESC, crashes DESC`,
		appName, sinceParam(days))
	if err != nil {
		return nil, err
	}
	rows := make([]model.SummaryRow, 0, len(res.Results))
	for _, row := range res.Results {
		rows = append(rows, model.SummaryRow{
			AppVersion: asString(row["app_version"]),
			Platform:   asString(row["platform"]),
			Day:        asTime(row["day"]),
			Crashes:    asInt64(row["crashes"]),
		})
	}
	return rows, nil
}

// exec sends one statement and decodes the collaborator's response.
func (s *RESTStore) exec(ctx context.Context, sql string, params ...any) (*restResult, error) {
	if s.endpoint == "" || s.token == "" {
		return nil, ErrNotConfigured
	}
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(restQuery{SQL: sql, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read storage response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(raw)
		if len(detail) > 512 {
			detail = detail[:512]
		}
		return nil, &RemoteError{Status: resp.StatusCode, Body: detail}
	}
	var res restResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode storage response: %w", err)
	}
	if !res.Success {
		return nil, &RemoteError{Status: resp.StatusCode, Body: res.Error}
	}
	return &res, nil
}

func sinceParam(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func asRawJSON(v any) json.RawMessage {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return json.RawMessage(s)
}
