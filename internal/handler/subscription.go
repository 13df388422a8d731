package handler

import (
	"net/http"
	"regexp"

	"github.com/lettervine/lettervine/internal/domain"
	"github.com/lettervine/lettervine/internal/utils"
)

type newSubscription struct {
	Name  string `validate:"required" json:"name"`
	Email string `validate:"required" json:"email"`
}

// Tokens are 128-bit identifiers rendered as 32 lowercase hex characters.
var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var body newSubscription
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	name, err := domain.NewSubscriberName(body.Name)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	email, err := domain.NewSubscriberEmail(body.Email)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.subscriptions.Signup(r.Context(), name, email); err != nil {
		// duplicate email, persistence failure and email-send failure all
		// surface as a generic 500
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("201 Created"))
}

func (h *Handler) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if !tokenPattern.MatchString(token) {
		http.Error(w, "Missing or malformed token", http.StatusBadRequest)
		return
	}

	if err := h.subscriptions.Confirm(r.Context(), token); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Subscription confirmed"))
}
