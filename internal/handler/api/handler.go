// Package api exposes the signal dataset over HTTP.
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"TrendBand/internal/domain/models"
	svcmetrics "TrendBand/internal/service/metrics"
	"TrendBand/internal/service/ratelimit"
	"TrendBand/internal/usecase"
	xhttp "TrendBand/pkg/http"
	applogger "TrendBand/pkg/logger"
	"TrendBand/pkg/util"
)

const (
	refreshBurst     = 2
	refreshPerSecond = 0.2
)

// Handler serves the signals API from the pipeline's current dataset.
type Handler struct {
	pipeline *usecase.Pipeline
	limiter  *ratelimit.Limiter
	l        *applogger.Logger
}

func NewHandler(pipeline *usecase.Pipeline, l *applogger.Logger) *Handler {
	svcmetrics.Register()
	return &Handler{
		pipeline: pipeline,
		limiter:  ratelimit.New(),
		l:        l,
	}
}

// RegisterRoutes registers API routes on the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/instruments", h.Instruments)
	g.GET("/dates", h.Dates)
	g.GET("/signals", h.Signals)
	g.GET("/series", h.Series)
	g.GET("/summary", h.Summary)
	g.POST("/refresh", h.Refresh)

	e.GET("/healthz", h.Health)
}

func observe(endpoint string, start time.Time, failed bool) {
	svcmetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if failed {
		svcmetrics.APIErrors.WithLabelValues(endpoint).Inc()
	}
}

// dataset returns the current dataset, or an AppError before the first pass
// has completed.
func (h *Handler) dataset() (*models.Dataset, *xhttp.AppError) {
	ds := h.pipeline.Current()
	if ds == nil {
		return nil, xhttp.InternalError("dataset not ready")
	}
	return ds, nil
}

// Instruments lists the instruments in the dataset with their row counts and
// date coverage.
func (h *Handler) Instruments(c echo.Context) error {
	start := time.Now()
	ds, appErr := h.dataset()
	if appErr != nil {
		observe("instruments", start, true)
		return xhttp.AppErrorResponse(c, appErr)
	}

	names := ds.Instruments()
	infos := make([]models.InstrumentInfo, 0, len(names))
	for _, name := range names {
		series := ds.Series(name)
		info := models.InstrumentInfo{Name: name, Points: len(series)}
		if len(series) > 0 {
			info.FirstDate = series[0].Date.Format("2006-01-02")
			info.LastDate = series[len(series)-1].Date.Format("2006-01-02")
		}
		infos = append(infos, info)
	}
	observe("instruments", start, false)
	return xhttp.ListResponse(c, infos, int64(len(infos)))
}

// Dates lists the distinct trade dates across all instruments.
func (h *Handler) Dates(c echo.Context) error {
	start := time.Now()
	ds, appErr := h.dataset()
	if appErr != nil {
		observe("dates", start, true)
		return xhttp.AppErrorResponse(c, appErr)
	}
	dates := ds.Dates()
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	observe("dates", start, false)
	return xhttp.ListResponse(c, out, int64(len(out)))
}

// Signals returns every instrument's point for one trade date, grouped by
// signal. Without a date parameter the most recent date in the dataset is
// used. Empty groups are a valid answer: no instrument traded that day.
func (h *Handler) Signals(c echo.Context) error {
	start := time.Now()

	req := new(models.SignalsRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		observe("signals", start, true)
		return xhttp.BadRequestResponse(c, errs)
	}

	ds, appErr := h.dataset()
	if appErr != nil {
		observe("signals", start, true)
		return xhttp.AppErrorResponse(c, appErr)
	}

	date, ok := h.resolveDate(ds, req.Date)
	if !ok {
		observe("signals", start, true)
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_DATE",
			Field:   "date",
			Message: "Date must look like 2006-01-02 or 02-Jan-2006",
		}})
	}

	snapshot := ds.SnapshotOn(date)
	grouped := map[models.Signal][]models.SeriesPointDTO{
		models.SignalBuy:  {},
		models.SignalSell: {},
		models.SignalHold: {},
	}
	for _, pt := range snapshot {
		grouped[pt.Signal] = append(grouped[pt.Signal], models.NewSeriesPointDTO(pt))
	}
	observe("signals", start, false)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"total":   len(snapshot),
		"signals": grouped,
	})
}

// Series returns the trailing series for one instrument. days=0 means the
// whole series; otherwise points within `days` days of the dataset's most
// recent date.
func (h *Handler) Series(c echo.Context) error {
	start := time.Now()

	req := new(models.SeriesRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		observe("series", start, true)
		return xhttp.BadRequestResponse(c, errs)
	}

	ds, appErr := h.dataset()
	if appErr != nil {
		observe("series", start, true)
		return xhttp.AppErrorResponse(c, appErr)
	}

	series := ds.SeriesLastDays(req.Instrument, req.Days)
	if len(series) == 0 {
		known := false
		for _, name := range ds.Instruments() {
			if name == req.Instrument {
				known = true
				break
			}
		}
		if !known {
			observe("series", start, true)
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown instrument %q", req.Instrument))
		}
	}

	points := models.NewSeriesPointDTOs(series)
	observe("series", start, false)
	return xhttp.ListResponse(c, points, int64(len(points)))
}

// Summary returns per-signal counts and top deviation scores for one date.
func (h *Handler) Summary(c echo.Context) error {
	start := time.Now()

	req := new(models.SummaryRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		observe("summary", start, true)
		return xhttp.BadRequestResponse(c, errs)
	}

	ds, appErr := h.dataset()
	if appErr != nil {
		observe("summary", start, true)
		return xhttp.AppErrorResponse(c, appErr)
	}

	date, ok := h.resolveDate(ds, req.Date)
	if !ok {
		observe("summary", start, true)
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_DATE",
			Field:   "date",
			Message: "Date must look like 2006-01-02 or 02-Jan-2006",
		}})
	}

	summary := usecase.Summarize(ds.SnapshotOn(date), date)
	observe("summary", start, false)
	return xhttp.SuccessResponse(c, summary)
}

// Refresh triggers a new pipeline pass. force=true bypasses the result cache.
// Rate limited per client to keep the loaders from being hammered.
func (h *Handler) Refresh(c echo.Context) error {
	start := time.Now()

	if !h.limiter.Allow(c.RealIP(), refreshBurst, refreshPerSecond) {
		observe("refresh", start, true)
		return xhttp.TooManyRequestsResponse(c)
	}

	req := new(models.RefreshRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		observe("refresh", start, true)
		return xhttp.BadRequestResponse(c, errs)
	}

	if req.Force {
		h.pipeline.Invalidate(c.Request().Context())
	}

	ds, err := h.pipeline.Run(c.Request().Context(), req.Force)
	if err != nil {
		h.l.Error("refresh failed", applogger.Error(err))
		observe("refresh", start, true)
		return xhttp.AppErrorResponse(c, xhttp.InternalError("refresh failed").WithError(err))
	}

	observe("refresh", start, false)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"checksum":    ds.Checksum,
		"computed_at": ds.ComputedAt,
		"points":      len(ds.Points),
		"instruments": len(ds.Instruments()),
		"warnings":    ds.Warnings,
	})
}

// Health reports liveness plus whether a dataset is available to serve.
func (h *Handler) Health(c echo.Context) error {
	ready := h.pipeline.Current() != nil
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"ready":  ready,
	})
}

// resolveDate parses the optional date parameter, defaulting to the
// dataset's most recent trade date.
func (h *Handler) resolveDate(ds *models.Dataset, raw string) (time.Time, bool) {
	if raw == "" {
		return ds.MaxDate()
	}
	return util.ParseQueryDate(raw)
}
