package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"onboarding/internal/form/metrics"
	"onboarding/internal/form/models"
	"onboarding/internal/form/service"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the form operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	EditField(ctx context.Context, id uuid.UUID, step models.StepID, field, value string) (*service.EditResult, error)
	SetAttachment(ctx context.Context, id uuid.UUID, step models.StepID, field string, att models.Attachment) (*service.EditResult, error)
	Continue(ctx context.Context, id uuid.UUID, step models.StepID) (*models.Session, error)
	Back(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Review(ctx context.Context, id uuid.UUID) (models.Draft, error)
	Submit(ctx context.Context, id uuid.UUID) (*models.Record, error)
	Reset(ctx context.Context, id uuid.UUID) error
}

// Handler wires form endpoints to the form service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a form handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts form endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/forms", func(r chi.Router) {
		r.Post("/", h.HandleStart)
		r.Route("/{formID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleReset)
			r.Put("/steps/{step}/fields/{field}", h.HandleEditField)
			r.Put("/steps/{step}/attachments/{field}", h.HandleSetAttachment)
			r.Post("/steps/{step}/continue", h.HandleContinue)
			r.Post("/back", h.HandleBack)
			r.Get("/review", h.HandleReview)
			r.Post("/submit", h.HandleSubmit)
		})
	})
}

// HandleStart handles POST /forms.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sess, err := h.service.Start(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start form",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/forms/"+sess.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, FromSession(sess))
}

// HandleGet handles GET /forms/{formID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleEditField handles PUT /forms/{formID}/steps/{step}/fields/{field}.
func (h *Handler) HandleEditField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	step, ok := h.step(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EditFieldRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.EditField(ctx, id, step, chi.URLParam(r, "field"), req.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "field edit rejected",
			"request_id", requestID,
			"form_id", id,
			"step", step,
			"field", chi.URLParam(r, "field"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEditResult(res))
}

// HandleSetAttachment handles PUT /forms/{formID}/steps/{step}/attachments/{field}.
func (h *Handler) HandleSetAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	step, ok := h.step(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AttachmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.SetAttachment(ctx, id, step, chi.URLParam(r, "field"), req.Attachment())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEditResult(res))
}

// HandleContinue handles POST /forms/{formID}/steps/{step}/continue. A step
// that does not validate is answered with 422 and the per-field errors.
func (h *Handler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	step, ok := h.step(w, r)
	if !ok {
		return
	}

	sess, err := h.service.Continue(ctx, id, step)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "step continued",
		"request_id", requestID,
		"form_id", id,
		"step", step,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleBack handles POST /forms/{formID}/back.
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Back(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleReview handles GET /forms/{formID}/review.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	draft, err := h.service.Review(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDraft(id, draft))
}

// HandleSubmit handles POST /forms/{formID}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Submit(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "form submit failed",
			"request_id", requestID,
			"form_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, FromRecord(rec))
}

// HandleReset handles DELETE /forms/{formID}.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	if err := h.service.Reset(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) formID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request) (models.StepID, bool) {
	step, err := models.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error()))
		return "", false
	}
	return step, true
}
