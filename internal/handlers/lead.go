package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/handlers/render"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/lead"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/zoho"
)

// FormTokenHeader carries the anti-spam token issued to the form page
const FormTokenHeader = "X-Form-Token"

type leadService interface {
	Submit(ctx context.Context, name string, email string, interests []string) (lead.SubmitResult, error)
}

type formTokens interface {
	Issue() (string, error)
	Verify(token string) error
}

type LeadHandler struct {
	leadService leadService

	// formTokens is nil when spam protection is not configured
	formTokens formTokens

	logger logger.Logger
}

func NewLead(leadService leadService, formTokens formTokens, l logger.Logger) *LeadHandler {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &LeadHandler{
		leadService: leadService,
		formTokens:  formTokens,
		logger:      l,
	}
}

func (h *LeadHandler) token(w http.ResponseWriter, r *http.Request) {
	type TokenResponse struct {
		Token string `json:"token"`
	}

	if h.formTokens == nil {
		render.ServiceError(w, "Form tokens are not enabled", http.StatusNotFound)
		return
	}

	token, err := h.formTokens.Issue()
	if err != nil {
		h.logger.Error("failed to issue form token", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, TokenResponse{Token: token})
}

func (h *LeadHandler) submit(w http.ResponseWriter, r *http.Request) {
	type SubmitEntry struct {
		Name      string         `json:"Name" validate:"required,min=2,max=100"`
		Email     string         `json:"Email" validate:"required,email"`
		Interests lead.Interests `json:"Interests"`
	}
	type SubmitRequest struct {
		Data []SubmitEntry `json:"data" validate:"required,min=1,dive"`
	}
	type SubmitSuccessResponse struct {
		Success  bool   `json:"success"`
		RecordID string `json:"recordId"`
		Message  string `json:"message"`
	}
	type SubmitFailureResponse struct {
		Error          string `json:"error"`
		DuplicateField string `json:"duplicateField,omitempty"`
	}

	if h.formTokens != nil {
		if err := h.formTokens.Verify(r.Header.Get(FormTokenHeader)); err != nil {
			render.ServiceError(w, "Form token missing or invalid", http.StatusUnauthorized)
			return
		}
	}

	data, err := render.BindAndValidate[SubmitRequest](w, r)
	if err != nil {
		return
	}

	entry := data.Data[0]
	result, err := h.leadService.Submit(r.Context(), entry.Name, entry.Email, entry.Interests)
	if err != nil {
		h.logger.Error("lead submission failed", "email", entry.Email, "error", err.Error())
		render.ServiceError(w, "Something went wrong, please try again", http.StatusInternalServerError)
		return
	}

	outcome := result.Outcome
	switch outcome.Kind {
	case zoho.OutcomeSuccess:
		render.JSON(w, SubmitSuccessResponse{
			Success:  true,
			RecordID: outcome.RecordID,
			Message:  "Thank you, we will be in touch shortly",
		})

	case zoho.OutcomeValidation:
		render.JSONWithStatus(w, render.ErrorResponse{
			Error:   render.ValidationErrorType,
			Message: "The CRM rejected the submitted data",
			Fields:  outcome.Fields,
		}, http.StatusBadRequest)

	case zoho.OutcomeDuplicate:
		render.JSONWithStatus(w, SubmitFailureResponse{
			Error:          duplicateMessage(outcome.DuplicateField),
			DuplicateField: outcome.DuplicateField,
		}, http.StatusConflict)

	case zoho.OutcomeAuthFailure:
		h.logger.Error("CRM authentication failed", "detail", outcome.Message)
		render.JSONWithStatus(w, SubmitFailureResponse{
			Error: "We could not process your request right now, please try again later",
		}, http.StatusUnauthorized)

	default:
		h.logger.Warn("CRM returned unexpected outcome", "detail", outcome.Message)
		render.JSONWithStatus(w, SubmitFailureResponse{
			Error: "Something went wrong, please try again",
		}, http.StatusInternalServerError)
	}
}

// duplicateMessage always blames a concrete field, the form shows it inline
func duplicateMessage(field string) string {
	if field == "" {
		field = "Email"
	}
	return "This " + strings.ToLower(field) + " is already registered with us"
}
