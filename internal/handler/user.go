package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-api/internal/domain/user"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	reg, err := decodeRegistration(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	u, err := h.accounts.Register(r.Context(), reg)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeToken(w, r, http.StatusCreated, u)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	u, err := h.accounts.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeToken(w, r, http.StatusOK, u)
}

func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, status int, u *user.User) {
	token, err := h.tokens.Issue(u)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, status, func(e *jx.Encoder) { encodeToken(e, token) })
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range users {
				encodeUser(e, &users[i])
			}
		})
	})
}

func (h *Handler) showUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
}

// deleteUser removes the caller's own account. Orders go with it.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if id != caller(r).UserID {
		fail(w, r, errForbidden)
		return
	}
	u, err := h.users.Delete(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
}
