package handler

import (
	"time"

	"github.com/google/uuid"

	"onboarding/internal/datepair"
	"onboarding/internal/fielderr"
	"onboarding/internal/form/models"
	"onboarding/internal/form/service"
)

// DateResponse renders one linked date pair.
type DateResponse struct {
	BS         string                   `json:"bs"`
	AD         string                   `json:"ad"`
	LastEdited datepair.Side            `json:"last_edited,omitempty"`
	Errors     map[string]fielderr.Kind `json:"errors,omitempty"`
}

// StepResponse renders the working state of one step.
type StepResponse struct {
	Fields      map[string]string              `json:"fields"`
	Dates       map[string]DateResponse        `json:"dates,omitempty"`
	Attachments map[string]models.Attachment   `json:"attachments,omitempty"`
	Errors      map[string]fielderr.FieldError `json:"errors,omitempty"`
	Completed   bool                           `json:"completed"`
}

// FormResponse renders a form session.
type FormResponse struct {
	ID          uuid.UUID               `json:"id"`
	Status      models.Status           `json:"status"`
	CurrentStep models.StepID           `json:"current_step"`
	Steps       map[string]StepResponse `json:"steps"`
	Age         *int                    `json:"age,omitempty"`
	Draft       models.Draft            `json:"draft"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	ExpiresAt   time.Time               `json:"expires_at"`
	SubmittedAt *time.Time              `json:"submitted_at,omitempty"`
}

// EditResponse is returned by field and attachment edits.
type EditResponse struct {
	Form    FormResponse                   `json:"form"`
	Valid   bool                           `json:"valid"`
	Errors  map[string]fielderr.FieldError `json:"errors,omitempty"`
	Sync    *datepair.Outcome              `json:"sync,omitempty"`
	Changes []datepair.Change              `json:"changes,omitempty"`
}

// ReviewResponse is the committed draft shown before submit.
type ReviewResponse struct {
	ID     uuid.UUID    `json:"id"`
	Fields models.Draft `json:"fields"`
}

// SubmitResponse confirms a hand-off.
type SubmitResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func FromSession(s *models.Session) FormResponse {
	resp := FormResponse{
		ID:          s.ID,
		Status:      s.Status,
		CurrentStep: s.Current,
		Steps:       make(map[string]StepResponse, len(s.Steps)),
		Age:         s.Age,
		Draft:       s.Draft,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		ExpiresAt:   s.ExpiresAt,
		SubmittedAt: s.SubmittedAt,
	}
	if resp.Draft == nil {
		resp.Draft = models.Draft{}
	}
	for id, st := range s.Steps {
		if id == models.StepReview {
			continue
		}
		resp.Steps[string(id)] = fromStep(st)
	}
	return resp
}

func fromStep(st *models.StepState) StepResponse {
	resp := StepResponse{
		Fields:      st.Fields,
		Attachments: st.Attachments,
		Errors:      st.Errors,
		Completed:   st.Completed,
	}
	if resp.Fields == nil {
		resp.Fields = map[string]string{}
	}
	if len(st.Pairs) > 0 {
		resp.Dates = make(map[string]DateResponse, len(st.Pairs))
		for name, p := range st.Pairs {
			resp.Dates[name] = fromPair(p.Snapshot())
		}
	}
	return resp
}

func fromPair(s datepair.Snapshot) DateResponse {
	resp := DateResponse{
		BS:         s.BSText,
		AD:         s.ADText,
		LastEdited: s.LastEdited,
	}
	if len(s.Errors) > 0 {
		resp.Errors = make(map[string]fielderr.Kind, len(s.Errors))
		for side, kind := range s.Errors {
			resp.Errors[s.FieldName(side)] = kind
		}
	}
	return resp
}

func FromEditResult(res *service.EditResult) EditResponse {
	return EditResponse{
		Form:    FromSession(res.Session),
		Valid:   res.Report.Valid,
		Errors:  res.Report.Errors,
		Sync:    res.Sync,
		Changes: res.Changes,
	}
}

func FromDraft(id uuid.UUID, d models.Draft) ReviewResponse {
	return ReviewResponse{ID: id, Fields: d}
}

func FromRecord(rec *models.Record) SubmitResponse {
	return SubmitResponse{
		ID:          rec.FormID,
		Status:      string(models.StatusSubmitted),
		SubmittedAt: rec.SubmittedAt,
	}
}
