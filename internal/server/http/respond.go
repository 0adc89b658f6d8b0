package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps sentinel errors to HTTP status codes. Bid rejections keep
// their specific reason in the body; the status alone only says "rejected".
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyRegistered), errors.Is(err, errs.ErrDuplicateItem):
		return http.StatusConflict
	case errors.Is(err, errs.ErrChallengeExpired):
		return http.StatusGone
	case errors.Is(err, errs.ErrChallengeMismatch),
		errors.Is(err, errs.ErrDuplicateOrLowerBid),
		errors.Is(err, errs.ErrBidExceedsCap),
		errors.Is(err, errs.ErrBidBelowHighest),
		errors.Is(err, errs.ErrBidBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrBiddingClosed):
		return http.StatusLocked
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		if strings.HasPrefix(err.Error(), "validation:") {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
		msg = "internal"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("validation: malformed request body")
	}
	return nil
}
