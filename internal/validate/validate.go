// Package validate applies the crash-report admission rules to a decoded
// JSON payload. Rules are independent: every violation is reported, not just
// the first, so a client can fix its request in one round trip.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/crashgate-io/crashgate/internal/model"
)

const (
	MaxAppNameChars      = 99
	MaxErrorMessageChars = 5000
	MaxStackTraceChars   = 20000
	MaxReportAge         = 24 * time.Hour
)

// versionPattern: leading literal "v", three dot-separated non-negative
// integers, anything after that is an allowed suffix (v1.2.3-rc.1).
var versionPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+`)

// Result carries the outcome of validating one payload. Timestamp holds the
// parsed crash instant when rule 4 passed.
type Result struct {
	Errors    []string
	Timestamp time.Time
}

// Valid reports whether no rule was violated.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Report checks payload against all admission rules, reading "now" at call
// time. Length limits are exclusive upper bounds measured before
// sanitization.
func Report(payload map[string]any, now time.Time) Result {
	var res Result

	if s, ok := stringField(payload, "app_name"); !ok {
		res.Errors = append(res.Errors, "app_name is required and must be a string")
	} else if n := utf8.RuneCountInString(s); n < 1 || n > MaxAppNameChars {
		res.Errors = append(res.Errors, fmt.Sprintf("app_name must be between 1 and %d characters", MaxAppNameChars))
	}

	if s, ok := stringField(payload, "app_version"); !ok {
		res.Errors = append(res.Errors, "app_version is required and must be a string")
	} else if !versionPattern.MatchString(s) {
		res.Errors = append(res.Errors, "app_version must match the format v<major>.<minor>.<patch> (e.g. v1.2.3)")
	}

	if s, ok := stringField(payload, "platform"); !ok {
		res.Errors = append(res.Errors, "platform is required and must be a string")
	} else if _, known := model.Platforms[strings.ToLower(s)]; !known {
		res.Errors = append(res.Errors, "platform must be one of: "+platformList())
	}

	if s, ok := stringField(payload, "crash_timestamp"); !ok {
		res.Errors = append(res.Errors, "crash_timestamp is required and must be a string")
	} else if ts, err := time.Parse(time.RFC3339, s); err != nil {
		res.Errors = append(res.Errors, "crash_timestamp must be a valid RFC 3339 timestamp")
	} else if ts.After(now) {
		res.Errors = append(res.Errors, "crash_timestamp must not be in the future")
	} else if ts.Before(now.Add(-MaxReportAge)) {
		res.Errors = append(res.Errors, "crash_timestamp must not be older than 24 hours")
	} else {
		res.Timestamp = ts
	}

	if v, present := payload["error_message"]; present && v != nil {
		if s, ok := v.(string); !ok {
			res.Errors = append(res.Errors, "error_message must be a string")
		} else if utf8.RuneCountInString(s) >= MaxErrorMessageChars {
			res.Errors = append(res.Errors, fmt.Sprintf("error_message must be shorter than %d characters", MaxErrorMessageChars))
		}
	}

	if v, present := payload["stack_trace"]; present && v != nil {
		if s, ok := v.(string); !ok {
			res.Errors = append(res.Errors, "stack_trace must be a string")
		} else if utf8.RuneCountInString(s) >= MaxStackTraceChars {
			res.Errors = append(res.Errors, fmt.Sprintf("stack_trace must be shorter than %d characters", MaxStackTraceChars))
		}
	}

	return res
}

// stringField returns payload[key] when it is present, non-nil and a string.
func stringField(payload map[string]any, key string) (string, bool) {
	v, present := payload[key]
	if !present || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func platformList() string {
	names := make([]string, 0, len(model.Platforms))
	for name := range model.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
