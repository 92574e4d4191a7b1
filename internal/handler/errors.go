package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
	"github.com/xenking/storefront-api/pkg/httpmiddleware"
)

// Stable error kinds of the error envelope.
const (
	kindInvalidRequest = "invalid_request"
	kindUnauthorized   = "unauthorized"
	kindForbidden      = "forbidden"
	kindNotFound       = "not_found"
	kindConflict       = "conflict"
	kindInvalidState   = "invalid_state"
	kindEmailTaken     = "email_taken"
	kindStorage        = "storage"
	kindInternal       = "internal"
)

var errForbidden = errors.New("resource belongs to another user")

// fail writes the error envelope for err. Unexpected failures are logged
// and reported with a generic message.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr   *requestError
		conflict *order.ConflictError
		notFound *order.NotFoundError
		invalid  *order.InvalidStateError
		storage  *order.StorageError
	)
	lg := zctx.From(r.Context())

	switch {
	case errors.As(err, &reqErr):
		httpmiddleware.WriteError(w, http.StatusBadRequest, kindInvalidRequest, reqErr.Error())
	case errors.As(err, &conflict):
		lg.Info("Order rejected", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusConflict, kindConflict, conflict.Error())
	case errors.As(err, &invalid):
		lg.Info("Order rejected", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusConflict, kindInvalidState, invalid.Error())
	case errors.As(err, &notFound):
		httpmiddleware.WriteError(w, http.StatusNotFound, kindNotFound, notFound.Error())
	case errors.Is(err, product.ErrNotFound), errors.Is(err, user.ErrNotFound):
		httpmiddleware.WriteError(w, http.StatusNotFound, kindNotFound, err.Error())
	case errors.Is(err, product.ErrInUse):
		httpmiddleware.WriteError(w, http.StatusConflict, kindConflict, product.ErrInUse.Error())
	case errors.Is(err, user.ErrIncomplete):
		httpmiddleware.WriteError(w, http.StatusBadRequest, kindInvalidRequest, user.ErrIncomplete.Error())
	case errors.Is(err, user.ErrEmailTaken):
		httpmiddleware.WriteError(w, http.StatusConflict, kindEmailTaken, user.ErrEmailTaken.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		httpmiddleware.WriteError(w, http.StatusUnauthorized, kindUnauthorized, user.ErrInvalidCredentials.Error())
	case errors.Is(err, errForbidden):
		httpmiddleware.WriteError(w, http.StatusForbidden, kindForbidden, errForbidden.Error())
	case errors.As(err, &storage):
		lg.Error("Storage failure", zap.String("op", storage.Op), zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusInternalServerError, kindStorage, "storage unavailable")
	default:
		lg.Error("Request failed", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusInternalServerError, kindInternal, "internal server error")
	}
}
