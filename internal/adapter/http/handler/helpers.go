package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/govledger/internal/adapter/http/dto"
	"github.com/iho/govledger/internal/adapter/http/middleware"
	"github.com/iho/govledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it. Governance
// rejections carry their structured reasons.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, resp := domainErrorResponse(message, err)
	writeJSON(w, status, resp)
}

// domainErrorResponse builds the body for err. Unmapped errors are masked
// so driver and network details stay in the logs.
func domainErrorResponse(message string, err error) (int, *dto.ErrorResponse) {
	status := mapDomainError(err)

	resp := errorResponse(message, err)
	if status == http.StatusInternalServerError {
		resp.Message = "internal error"
	}

	return status, resp
}

func errorResponse(message string, err error) *dto.ErrorResponse {
	resp := &dto.ErrorResponse{Error: message, Message: err.Error()}

	var rejected *domain.GovernanceRejectedError
	if errors.As(err, &rejected) {
		resp.Reasons = rejected.Reasons
	}

	return resp
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLedgerLocked),
		errors.Is(err, domain.ErrAlreadyExecuted),
		errors.Is(err, domain.ErrAlreadyReleased),
		errors.Is(err, domain.ErrDuplicateSignature),
		errors.Is(err, domain.ErrAlreadyReversed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrImbalancedEntry),
		errors.Is(err, domain.ErrGovernanceRejected),
		errors.Is(err, domain.ErrGovernanceRequired),
		errors.Is(err, domain.ErrChainVerification):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidLine),
		errors.Is(err, domain.ErrInvalidEventType),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidEntityStatus),
		errors.Is(err, domain.ErrEntityCycle),
		errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrAccountMismatch),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, domain.ErrInvalidPercentage),
		errors.Is(err, domain.ErrOverAllocated):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	return true
}

// actor returns the ID of the operator making the request.
func actor(r *http.Request) string {
	if op, ok := middleware.OperatorFromContext(r.Context()); ok {
		return op.ID
	}

	return ""
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
