package server

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/crashgate-io/crashgate/internal/hmacsig"
	"github.com/crashgate-io/crashgate/internal/model"
	"github.com/crashgate-io/crashgate/internal/response"
)

// Read API parameter bounds. Out-of-range values are clamped, not rejected.
const (
	defaultReadLimit = 50
	maxReadLimit     = 100
	defaultReadDays  = 30
	maxReadDays      = 365
)

// Query returns stored reports for one application. Read requests carry no
// body, so the signature covers the literal "read" payload instead.
func (h *Handler) Query(c echo.Context) error {
	if !hmacsig.VerifyRead(h.cfg.Auth.HMACSecret, c.Request().Header.Get(HeaderSignature)) {
		return response.InvalidSignature(c)
	}
	appName := c.Request().Header.Get(HeaderAppName)
	if appName == "" {
		return response.BadRequest(c, "Missing X-App-Name header")
	}

	q := model.ReportQuery{
		AppName: appName,
		Version: c.QueryParam("version"),
		Limit:   clampedParam(c, "limit", defaultReadLimit, 1, maxReadLimit),
		Offset:  clampedParam(c, "offset", 0, 0, int(^uint(0)>>1)),
		Days:    clampedParam(c, "days", defaultReadDays, 1, maxReadDays),
	}

	reports, err := h.store.List(c.Request().Context(), q)
	if err != nil {
		h.log.Error().Err(err).Str("app_name", appName).Msg("read query failed")
		return response.ReadFailed(c)
	}
	if reports == nil {
		reports = []model.StoredReport{}
	}
	return response.Read(c, reports, &response.Pagination{
		Limit:    q.Limit,
		Offset:   q.Offset,
		Returned: len(reports),
	})
}

// Summary exposes the pre-aggregated crash counts per version, platform and
// day. Same authentication and app scoping as Query.
func (h *Handler) Summary(c echo.Context) error {
	if !hmacsig.VerifyRead(h.cfg.Auth.HMACSecret, c.Request().Header.Get(HeaderSignature)) {
		return response.InvalidSignature(c)
	}
	appName := c.Request().Header.Get(HeaderAppName)
	if appName == "" {
		return response.BadRequest(c, "Missing X-App-Name header")
	}
	days := clampedParam(c, "days", defaultReadDays, 1, maxReadDays)

	rows, err := h.store.Summary(c.Request().Context(), appName, days)
	if err != nil {
		h.log.Error().Err(err).Str("app_name", appName).Msg("summary query failed")
		return response.ReadFailed(c)
	}
	if rows == nil {
		rows = []model.SummaryRow{}
	}
	return response.Read(c, rows, nil)
}

// clampedParam parses an integer query parameter, falling back to def and
// clamping into [min, max].
func clampedParam(c echo.Context, name string, def, min, max int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
