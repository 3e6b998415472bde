package model

import (
	"encoding/json"
	"time"
)

// Platforms is the closed set of accepted platform names. Input is matched
// case-insensitively; records always store the lower-case form.
var Platforms = map[string]struct{}{
	"windows": {},
	"linux":   {},
	"macos":   {},
	"android": {},
	"ios":     {},
}

// CrashReport is a fully validated and sanitized report, ready to persist.
// Instances are built once per request and never mutated afterwards.
type CrashReport struct {
	ID             string          `json:"id"`
	AppName        string          `json:"app_name"`
	AppVersion     string          `json:"app_version"`
	Platform       string          `json:"platform"`
	CrashTimestamp time.Time       `json:"crash_timestamp"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	StackTrace     string          `json:"stack_trace,omitempty"`
	HardwareSpecs  json.RawMessage `json:"hardware_specs,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	IPHash         string          `json:"ip_hash"`
	ReceivedAt     time.Time       `json:"received_at"`
}

// StoredReport is a persisted row as returned by the read API.
type StoredReport struct {
	ID             string          `json:"id"`
	AppName        string          `json:"app_name"`
	AppVersion     string          `json:"app_version"`
	Platform       string          `json:"platform"`
	CrashTimestamp time.Time       `json:"crash_timestamp"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	StackTrace     string          `json:"stack_trace,omitempty"`
	HardwareSpecs  json.RawMessage `json:"hardware_specs,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	ReceivedAt     time.Time       `json:"received_at"`
}

// ReportQuery filters the read API. Limit/Offset/Days are clamped by the
// handler before reaching a store.
type ReportQuery struct {
	AppName string
	Version string
	Limit   int
	Offset  int
	Days    int
}

// SummaryRow is one bucket of the pre-aggregated crash_summary view:
// crash count per (app_version, platform, day).
type SummaryRow struct {
	AppVersion string    `json:"app_version"`
	Platform   string    `json:"platform"`
	Day        time.Time `json:"day"`
	Crashes    int64     `json:"crashes"`
}
