package transport

import (
	"errors"
	"net/http"
	"strconv"

	"inventory-orders/internal/middleware"
	"inventory-orders/internal/repository"
	"inventory-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultLimit = 10

// PageParams are the offset/limit query parameters of list endpoints
type PageParams struct {
	Offset int `query:"offset" validate:"gte=0"`
	Limit  int `query:"limit" validate:"gte=0,lte=100"`
}

// parsePage reads offset and limit from the query string, applying defaults
// for absent values
func parsePage(r *http.Request) (PageParams, []middleware.ValidationError) {
	page := PageParams{Offset: 0, Limit: defaultLimit}
	var errs []middleware.ValidationError

	params := []struct {
		name string
		dst  *int
	}{
		{"offset", &page.Offset},
		{"limit", &page.Limit},
	}
	for _, p := range params {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, middleware.ValidationError{Field: p.name, Message: "Value must be an integer"})
			continue
		}
		*p.dst = v
	}
	if len(errs) > 0 {
		return page, errs
	}

	if err := middleware.ValidateRequest(page); err != nil {
		return page, middleware.FormatValidationErrors(err)
	}
	return page, nil
}

// parseID reads the numeric {id} path parameter
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func respondInvalidID(w http.ResponseWriter) {
	middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
		{Field: "id", Message: "Value must be an integer"},
	})
}

// respondServiceError maps service and repository errors to HTTP responses
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "insufficient stock", map[string]interface{}{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, service.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidItem):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, service.ErrNoProducts),
		errors.Is(err, service.ErrNoOrders):
		middleware.RespondWithError(w, http.StatusNotFound, rootMessage(err))
	case errors.Is(err, repository.ErrProductInUse):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrProductInUse.Error())
	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// rootMessage returns the message of the sentinel at the bottom of err
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
