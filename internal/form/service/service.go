// Package service implements the onboarding form: per-step editing with linked
// BS/AD dates, validation on continue, back-navigation that keeps values, and a
// single hand-off of the completed draft on submit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"onboarding/internal/datepair"
	"onboarding/internal/form/metrics"
	"onboarding/internal/form/models"
	"onboarding/internal/validation"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

var tracer = otel.Tracer("onboarding/form")

// Store persists form sessions. Update runs fn against the current session
// and saves the result only when fn returns nil; errors returned by fn are
// passed through unchanged.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Submitter receives a completed draft. It is called once per submit.
type Submitter interface {
	Submit(ctx context.Context, rec models.Record) error
}

// Gate evaluates the rules of a step.
type Gate interface {
	Evaluate(step models.StepID, s validation.State) validation.Report
}

const defaultDraftTTL = 24 * time.Hour

// Service coordinates form sessions.
type Service struct {
	store         Store
	submitter     Submitter
	gate          Gate
	logger        *slog.Logger
	metrics       *metrics.Metrics
	draftTTL      time.Duration
	clearOnSubmit bool
	location      *time.Location
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDraftTTL sets how long an untouched draft is kept.
func WithDraftTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.draftTTL = ttl
		}
	}
}

// WithClearOnSubmit deletes the draft after a successful submit instead of
// retaining it read-only.
func WithClearOnSubmit(enabled bool) Option {
	return func(s *Service) { s.clearOnSubmit = enabled }
}

// WithLocation sets the timezone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New creates the form service.
func New(store Store, submitter Submitter, gate Gate, opts ...Option) *Service {
	s := &Service{
		store:     store,
		submitter: submitter,
		gate:      gate,
		logger:    slog.Default(),
		draftTTL:  defaultDraftTTL,
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EditResult is what a single field edit produced.
type EditResult struct {
	Session *models.Session
	Report  validation.Report
	// Sync is set for date fields.
	Sync *datepair.Outcome
	// Changes lists every field write the edit caused, in order.
	Changes []datepair.Change
}

// Start creates a new form on its first step.
func (s *Service) Start(ctx context.Context) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "form.Start")
	defer span.End()

	sess := models.NewSession(uuid.New(), s.now(ctx), s.draftTTL)
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	s.metrics.IncrementFormsStarted()
	s.logger.InfoContext(ctx, "form started",
		"request_id", requestcontext.RequestID(ctx),
		"form_id", sess.ID,
	)
	return sess, nil
}

// Get returns the current state of a form.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "form.Get", trace.WithAttributes(attribute.String("form.id", id.String())))
	defer span.End()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	return sess, nil
}

// EditField applies one user edit to a plain or date field of the current
// step and re-evaluates the step.
func (s *Service) EditField(ctx context.Context, id uuid.UUID, step models.StepID, field, value string) (*EditResult, error) {
	ctx, span := tracer.Start(ctx, "form.EditField", trace.WithAttributes(
		attribute.String("form.id", id.String()),
		attribute.String("form.step", string(step)),
		attribute.String("form.field", field),
	))
	defer span.End()

	var res EditResult
	sess, err := s.store.Update(ctx, id, func(sess *models.Session) error {
		res = EditResult{}
		st, spec, err := s.editableStep(sess, step)
		if err != nil {
			return err
		}

		kind, pair, side := spec.Classify(field)
		switch kind {
		case models.FieldPlain:
			st.Fields[field] = value
		case models.FieldDate:
			sync := datepair.New(st.Pairs[pair], datepair.WithListener(func(c datepair.Change) {
				res.Changes = append(res.Changes, c)
			}))
			out := sync.OnFieldEdited(side, value)
			res.Sync = &out
			s.recordSync(pair, value, out)
		case models.FieldAttachment:
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is an attachment field", field))
		default:
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown field %q for step %s", field, step))
		}

		st.Completed = false
		res.Report = s.evaluate(ctx, sess, step)
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}

	res.Session = sess
	s.logger.DebugContext(ctx, "form field edited",
		"request_id", requestcontext.RequestID(ctx),
		"form_id", id,
		"step", step,
		"field", field,
		"derived_writes", countDerived(res.Changes),
		"valid", res.Report.Valid,
	)
	return &res, nil
}

// SetAttachment records (or, with an empty name, clears) the metadata of a
// document on the current step.
func (s *Service) SetAttachment(ctx context.Context, id uuid.UUID, step models.StepID, field string, att models.Attachment) (*EditResult, error) {
	ctx, span := tracer.Start(ctx, "form.SetAttachment", trace.WithAttributes(
		attribute.String("form.id", id.String()),
		attribute.String("form.step", string(step)),
		attribute.String("form.field", field),
	))
	defer span.End()

	var res EditResult
	sess, err := s.store.Update(ctx, id, func(sess *models.Session) error {
		res = EditResult{}
		st, spec, err := s.editableStep(sess, step)
		if err != nil {
			return err
		}
		if kind, _, _ := spec.Classify(field); kind != models.FieldAttachment {
			return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is not an attachment field of step %s", field, step))
		}
		if att.Name == "" {
			delete(st.Attachments, field)
		} else {
			st.Attachments[field] = att
		}
		st.Completed = false
		res.Report = s.evaluate(ctx, sess, step)
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	res.Session = sess
	return &res, nil
}

// Continue validates the current step. When it passes, the step's values are
// merged into the draft and the form advances; otherwise a
// *models.StepInvalidError is returned together with the session.
func (s *Service) Continue(ctx context.Context, id uuid.UUID, step models.StepID) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "form.Continue", trace.WithAttributes(
		attribute.String("form.id", id.String()),
		attribute.String("form.step", string(step)),
	))
	defer span.End()

	var rep validation.Report
	sess, err := s.store.Update(ctx, id, func(sess *models.Session) error {
		st, _, err := s.editableStep(sess, step)
		if err != nil {
			return err
		}
		rep = s.evaluate(ctx, sess, step)
		if !rep.Valid {
			return nil
		}
		sess.Draft.Merge(st.Values())
		if step == models.StepPersonal && sess.Age != nil {
			sess.Draft[models.FieldAge] = strconv.Itoa(*sess.Age)
		}
		st.Completed = true
		sess.Current = step.Next()
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}

	if !rep.Valid {
		s.metrics.IncrementStepTransition(string(step), "rejected")
		for _, fe := range rep.Errors {
			s.metrics.IncrementFieldError(string(step), string(fe.Kind))
		}
		s.logger.InfoContext(ctx, "step rejected",
			"request_id", requestcontext.RequestID(ctx),
			"form_id", id,
			"step", step,
			"fields", rep.Errors.Fields(),
		)
		return sess, &models.StepInvalidError{Step: step, Errors: rep.Errors}
	}

	s.metrics.IncrementStepTransition(string(step), "completed")
	s.logger.InfoContext(ctx, "step completed",
		"request_id", requestcontext.RequestID(ctx),
		"form_id", id,
		"step", step,
		"next", sess.Current,
	)
	return sess, nil
}

// Back returns to the previous step. Values of every step are kept.
func (s *Service) Back(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "form.Back", trace.WithAttributes(attribute.String("form.id", id.String())))
	defer span.End()

	sess, err := s.store.Update(ctx, id, func(sess *models.Session) error {
		if sess.Status != models.StatusInProgress {
			return dErrors.New(dErrors.CodeInvalidState, "form already submitted")
		}
		prev := sess.Current.Prev()
		if prev == "" {
			return dErrors.New(dErrors.CodeInvalidState, "already on the first step")
		}
		sess.Current = prev
		s.touch(ctx, sess)
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	return sess, nil
}

// Review returns the committed draft once every data step is complete.
func (s *Service) Review(ctx context.Context, id uuid.UUID) (models.Draft, error) {
	ctx, span := tracer.Start(ctx, "form.Review", trace.WithAttributes(attribute.String("form.id", id.String())))
	defer span.End()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}
	if sess.Status == models.StatusInProgress && sess.Current != models.StepReview {
		return nil, s.fail(span, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("review is not available on step %s", sess.Current)))
	}
	return sess.Draft.Clone(), nil
}

// Submit hands the completed draft to the submitter exactly once. A failed
// hand-off reopens the form so the user can retry.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	ctx, span := tracer.Start(ctx, "form.Submit", trace.WithAttributes(attribute.String("form.id", id.String())))
	defer span.End()

	var rec models.Record
	_, err := s.store.Update(ctx, id, func(sess *models.Session) error {
		if sess.Status != models.StatusInProgress {
			return dErrors.New(dErrors.CodeInvalidState, "form already submitted")
		}
		if sess.Current != models.StepReview {
			return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("cannot submit from step %s", sess.Current))
		}
		for _, step := range models.Steps {
			if step != models.StepReview && !sess.Step(step).Completed {
				return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("step %s is not complete", step))
			}
		}
		now := s.now(ctx)
		sess.Status = models.StatusSubmitted
		sess.SubmittedAt = &now
		sess.UpdatedAt = now
		rec = models.Record{FormID: sess.ID, SubmittedAt: now, Fields: sess.Draft.Clone()}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.storeError(err))
	}

	start := time.Now()
	if err := s.submitter.Submit(ctx, rec); err != nil {
		s.metrics.ObserveSubmit("failed", time.Since(start))
		s.logger.ErrorContext(ctx, "form submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"form_id", id,
			"error", err,
		)
		if _, rbErr := s.store.Update(ctx, id, func(sess *models.Session) error {
			sess.Status = models.StatusInProgress
			sess.SubmittedAt = nil
			return nil
		}); rbErr != nil {
			s.logger.ErrorContext(ctx, "failed to reopen form after submission error",
				"form_id", id,
				"error", rbErr,
			)
		}
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeUnavailable, "submission failed, try again"))
	}
	s.metrics.ObserveSubmit("accepted", time.Since(start))

	if s.clearOnSubmit {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to clear submitted form",
				"form_id", id,
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "form submitted",
		"request_id", requestcontext.RequestID(ctx),
		"form_id", id,
		"fields", len(rec.Fields),
	)
	span.SetStatus(codes.Ok, "")
	return &rec, nil
}

// Reset discards a form.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "form.Reset", trace.WithAttributes(attribute.String("form.id", id.String())))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(span, s.storeError(err))
	}
	s.logger.InfoContext(ctx, "form reset",
		"request_id", requestcontext.RequestID(ctx),
		"form_id", id,
	)
	return nil
}

// editableStep checks that step is the current, editable step of sess.
func (s *Service) editableStep(sess *models.Session, step models.StepID) (*models.StepState, models.StepSpec, error) {
	if sess.Status != models.StatusInProgress {
		return nil, models.StepSpec{}, dErrors.New(dErrors.CodeInvalidState, "form already submitted")
	}
	spec, ok := models.SpecFor(step)
	if !ok {
		return nil, models.StepSpec{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown step %q", step))
	}
	if step == models.StepReview {
		return nil, models.StepSpec{}, dErrors.New(dErrors.CodeBadRequest, "the review step has no fields")
	}
	if sess.Current != step {
		return nil, models.StepSpec{}, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("step %s is not the current step (%s)", step, sess.Current))
	}
	return sess.Step(step), spec, nil
}

// evaluate runs the gate on step, stores the errors on the step and refreshes
// the derived age.
func (s *Service) evaluate(ctx context.Context, sess *models.Session, step models.StepID) validation.Report {
	st := sess.Step(step)
	rep := s.gate.Evaluate(step, validation.StateOf(st, s.today(ctx)))
	st.Errors = rep.Errors
	if step == models.StepPersonal {
		sess.Age = rep.Age
	}
	s.touch(ctx, sess)
	return rep
}

func (s *Service) touch(ctx context.Context, sess *models.Session) {
	now := s.now(ctx)
	sess.UpdatedAt = now
	sess.ExpiresAt = now.Add(s.draftTTL)
}

func (s *Service) recordSync(pair, value string, out datepair.Outcome) {
	side := string(out.Side)
	switch {
	case out.Ignored:
		s.metrics.IncrementIgnoredEdit(pair)
	case out.Err != nil:
		s.metrics.IncrementDateSync(pair, side, "error")
	case out.Derived != nil:
		s.metrics.IncrementDateSync(pair, side, "derived")
	case value == "":
		s.metrics.IncrementDateSync(pair, side, "cleared")
	default:
		s.metrics.IncrementDateSync(pair, side, "unchanged")
	}
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

func (s *Service) today(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).In(s.location)
}

// storeError translates store sentinels into domain errors. Errors that are
// already coded, or carry field details, pass through.
func (s *Service) storeError(err error) error {
	var de *dErrors.Error
	var invalid *models.StepInvalidError
	switch {
	case errors.As(err, &de), errors.As(err, &invalid):
		return err
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "form not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "form was modified concurrently, retry")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "draft storage unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "draft storage failed")
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func countDerived(changes []datepair.Change) int {
	n := 0
	for _, c := range changes {
		if c.Derived {
			n++
		}
	}
	return n
}
