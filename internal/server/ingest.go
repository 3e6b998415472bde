package server

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crashgate-io/crashgate/internal/config"
	"github.com/crashgate-io/crashgate/internal/hmacsig"
	"github.com/crashgate-io/crashgate/internal/model"
	"github.com/crashgate-io/crashgate/internal/ratelimit"
	"github.com/crashgate-io/crashgate/internal/response"
	"github.com/crashgate-io/crashgate/internal/sanitize"
	"github.com/crashgate-io/crashgate/internal/store"
	"github.com/crashgate-io/crashgate/internal/validate"
)

// Request headers of the crash-report API.
const (
	HeaderSignature  = "X-HMAC-Signature"
	HeaderAppName    = "X-App-Name"
	HeaderAppVersion = "X-App-Version"
)

// Handler runs the admission pipeline and the read queries.
type Handler struct {
	cfg     *config.Config
	store   store.Store
	limiter *ratelimit.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// Ingest admits one crash report. Stages run in fixed order and each gate can
// short-circuit with a terminal response: rate limit, body read, signature,
// parse, validation, sanitization, persistence. Exactly one insert happens
// per admitted request; rejected requests never reach the store.
func (h *Handler) Ingest(c echo.Context) error {
	ctx := c.Request().Context()
	identity := HashIdentity(ClientIP(c.Request()))

	if d := h.limiter.Allow(ctx, identity); !d.Allowed {
		return response.RateLimited(c, d.RetryAfter)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			// Body-limit breach surfaces here on chunked requests.
			return err
		}
		return response.InvalidJSON(c)
	}

	if !hmacsig.Verify(h.cfg.Auth.HMACSecret, body, c.Request().Header.Get(HeaderSignature)) {
		return response.InvalidSignature(c)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return response.InvalidJSON(c)
	}

	res := validate.Report(payload, h.now())
	if !res.Valid() {
		return response.InvalidCrashData(c, res.Errors)
	}

	report := h.buildReport(payload, res.Timestamp, identity)
	if err := h.store.Insert(ctx, report); err != nil {
		h.log.Error().
			Err(err).
			Str("kind", store.Kind(err)).
			Str("app_name", report.AppName).
			Msg("crash report not persisted")
		return response.PersistenceFailed(c)
	}

	h.log.Info().
		Str("id", report.ID).
		Str("app_name", report.AppName).
		Str("app_version", report.AppVersion).
		Str("platform", report.Platform).
		Msg("crash report stored")
	return response.Accepted(c, report.ID)
}

// buildReport assembles the immutable record handed to the store: string
// fields sanitized, platform lower-cased, timestamp canonicalized to UTC,
// hardware specs passed through opaquely.
func (h *Handler) buildReport(payload map[string]any, crashTS time.Time, ipHash string) *model.CrashReport {
	report := &model.CrashReport{
		ID:             uuid.New().String(),
		AppName:        sanitize.String(stringAt(payload, "app_name")),
		AppVersion:     sanitize.String(stringAt(payload, "app_version")),
		Platform:       normalizePlatform(stringAt(payload, "platform")),
		CrashTimestamp: crashTS.UTC(),
		ErrorMessage:   sanitize.String(stringAt(payload, "error_message")),
		StackTrace:     sanitize.String(stringAt(payload, "stack_trace")),
		UserID:         sanitize.String(stringAt(payload, "user_id")),
		SessionID:      sanitize.String(stringAt(payload, "session_id")),
		IPHash:         ipHash,
		ReceivedAt:     h.now().UTC(),
	}
	if specs, ok := payload["hardware_specs"]; ok && specs != nil {
		if raw, err := json.Marshal(specs); err == nil {
			report.HardwareSpecs = raw
		}
	}
	return report
}

func stringAt(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
