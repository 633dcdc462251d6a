// Package handler exposes the BS/AD converter over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/calendar"
	"onboarding/internal/fielderr"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Handler serves stateless conversions against the embedded table.
type Handler struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Register mounts calendar endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/calendar/convert", h.HandleConvert)
	r.Get("/calendar/range", h.HandleRange)
	r.Get("/calendar/bs/{year}", h.HandleMonths)
}

// ConvertResponse is a converted date with the table it was computed from.
type ConvertResponse struct {
	Input        calendar.Date `json:"input"`
	Result       calendar.Date `json:"result"`
	TableVersion string        `json:"table_version"`
}

// MonthsResponse lists the month lengths of one BS year.
type MonthsResponse struct {
	Year         int     `json:"year"`
	Months       [12]int `json:"months"`
	Days         int     `json:"days"`
	TableVersion string  `json:"table_version"`
}

// HandleConvert handles GET /calendar/convert?calendar=BS&date=2080-01-15.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	cal, err := calendar.ParseCalendar(strings.ToUpper(strings.TrimSpace(q.Get("calendar"))))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "calendar must be BS or AD"))
		return
	}
	in, err := calendar.Parse(cal, q.Get("date"))
	if err != nil {
		httputil.WriteError(w, dateError(err))
		return
	}
	out, err := calendar.Convert(in)
	if err != nil {
		h.logger.DebugContext(ctx, "conversion failed",
			"request_id", requestcontext.RequestID(ctx),
			"input", in.String(),
			"error", err,
		)
		httputil.WriteError(w, dateError(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ConvertResponse{
		Input:        in,
		Result:       out,
		TableVersion: calendar.TableVersion(),
	})
}

// HandleRange handles GET /calendar/range.
func (h *Handler) HandleRange(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, calendar.SupportedRange())
}

// HandleMonths handles GET /calendar/bs/{year}.
func (h *Handler) HandleMonths(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "year must be a number"))
		return
	}
	months, err := calendar.MonthLengths(year)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "year is not covered by the calendar table"))
		return
	}
	days := 0
	for _, n := range months {
		days += n
	}
	httputil.WriteJSON(w, http.StatusOK, MonthsResponse{
		Year:         year,
		Months:       months,
		Days:         days,
		TableVersion: calendar.TableVersion(),
	})
}

func dateError(err error) error {
	return dErrors.Wrap(err, dErrors.CodeValidation, fielderr.MessageFor(fielderr.KindOf(err)))
}
