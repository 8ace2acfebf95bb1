package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/solodko/storefront/internal/domain/contact"
)

type storeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
	URL  string `json:"url,omitempty"`
}

// listStores returns the static "where to buy" partner list.
func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	out := make([]storeResponse, len(h.stores))
	for i, s := range h.stores {
		out[i] = storeResponse{
			ID:   s.ID,
			Name: s.Name,
			Logo: h.images.ResolveURL(s.Logo),
			URL:  s.URL,
		}
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	msg := &contact.Message{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		var vErr *contact.ValidationError
		if errors.As(err, &vErr) {
			h.writeError(w, r, http.StatusBadRequest, vErr.Error())
			return
		}
		h.writeError(w, r, http.StatusBadRequest, "invalid message")
		return
	}

	if err := h.contacts.Create(r.Context(), msg); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type contactMessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// listContactMessages is the admin inbox: every submitted form, newest first.
func (h *Handler) listContactMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contacts.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]contactMessageResponse, len(messages))
	for i, m := range messages {
		out[i] = contactMessageResponse{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Phone:     m.Phone,
			Subject:   m.Subject,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		}
	}
	h.writeJSON(w, r, http.StatusOK, out)
}
