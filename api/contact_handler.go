package api

import (
	"net/http"
	"time"

	"github.com/lejapetric/simon/errs"
	"github.com/lejapetric/simon/models"
	"github.com/lejapetric/simon/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const contactThanks = "Thank you for your inquiry! We will get back to you as soon as possible."

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	notifier  services.Notifier
}

func newContactHandler(notifier services.Notifier) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()
	if notifier == nil {
		notifier = services.NoopNotifier{}
	}

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		notifier:  notifier,
	}
}

// submitContact accepts a contact form submission
// @Summary Contact form
// @Description message is required, as is one of email or phone
// @Tags Contact
// @Accept json
// @Produce json
// @Param contact body contactRequest true "Inquiry"
// @Success 200 {object} ContactResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid contact data"
// @Failure 429 {object} ErrorResponse "Too Many Requests"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Forwarding failed"
// @Router /api/contact [post]
func (h contactHandler) submitContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body contactRequest
		if err := decodeAndValidate(w, r, "contact", &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		msg := models.ContactMessage{
			Name:       body.Name,
			Email:      body.Email,
			Phone:      body.Phone,
			Message:    body.Message,
			ReceivedAt: time.Now().UTC(),
			RemoteAddr: r.RemoteAddr,
		}

		h.logger.Info().
			Str("name", msg.Name).
			Str("email", msg.Email).
			Str("phone", msg.Phone).
			Str("message", msg.Message).
			Str("remote_addr", msg.RemoteAddr).
			Msg("contact form submission")

		if err := h.notifier.NotifyContact(r.Context(), msg); err != nil {
			h.responder.WriteError(w, errs.NewUpstreamError("contact forwarding", err))
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, ContactResponse{Success: true, Message: contactThanks})
	}
}
