package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-api/internal/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, orders) })
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Create(r.Context(), caller(r).UserID, order.StatusActive)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) currentOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.FindCurrentByUserID(r.Context(), caller(r).UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		if o == nil {
			e.Null()
			return
		}
		encodeOrder(e, o)
	})
}

func (h *Handler) completeOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindCompleteByUserID(r.Context(), caller(r).UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, orders) })
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.ownedOrder(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	current, err := h.ownedOrder(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	status, err := decodeStatus(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	o, err := h.orders.Update(r.Context(), current.ID, caller(r).UserID, status)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	o, err := h.ownedOrder(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	req, err := decodeLineItem(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	item, err := h.orders.AddProduct(r.Context(), o.ID, req.ProductID, int(req.Quantity))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeLineItem(e, item) })
}

// ownedOrder loads the order named by the path and checks that it belongs
// to the caller.
func (h *Handler) ownedOrder(r *http.Request) (*order.Order, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if o.UserID != caller(r).UserID {
		return nil, errForbidden
	}
	return o, nil
}
