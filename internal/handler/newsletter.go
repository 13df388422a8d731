package handler

import (
	"net/http"

	"github.com/lettervine/lettervine/internal/domain"
	"github.com/lettervine/lettervine/internal/utils"
)

type newsletterContent struct {
	Text string `validate:"required,min=4" json:"text"`
	HTML string `validate:"required,min=4" json:"html"`
}

type publishNewsletter struct {
	Title   string            `validate:"required,min=4,max=250" json:"title"`
	Content newsletterContent `validate:"required" json:"content"`
}

func (h *Handler) PublishNewsletter(w http.ResponseWriter, r *http.Request) {
	var body publishNewsletter
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	letter := domain.Newsletter{
		Title:       body.Title,
		TextContent: body.Content.Text,
		HTMLContent: body.Content.HTML,
	}

	if err := h.newsletters.Publish(r.Context(), letter); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
