package server

import (
	"encoding/json"
	"net/http"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/treasury"
)

// JSONResp write content as JSON encoded response.
func JSONResp(w http.ResponseWriter, code int, content interface{}) {
	b, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		code = http.StatusInternalServerError
		b = []byte(`{"error":"Internal Server Error"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code  uint32 `json:"code"`
	Error string `json:"error"`
	Log   string `json:"log,omitempty"`
}

// JSONErr write an error message as JSON encoded response.
func JSONErr(w http.ResponseWriter, status int, errText, log string) {
	JSONResp(w, status, ErrorResponse{Error: errText, Log: log})
}

// writeErr writes the application error, using an HTTP status matching its
// kind. Internal errors are redacted.
func writeErr(w http.ResponseWriter, err error) {
	status := statusCode(err)
	resp := ErrorResponse{Code: errors.Code(err)}
	if status == http.StatusInternalServerError {
		resp.Error = errors.Redact(err).Error()
	} else {
		resp.Error = kindName(err)
		resp.Log = err.Error()
	}
	JSONResp(w, status, resp)
}

var (
	forbidden = []*errors.Error{
		treasury.ErrNotOwner,
		errors.ErrUnauthorized,
	}
	notFound = []*errors.Error{
		treasury.ErrTransactionNotFound,
		errors.ErrNotFound,
	}
	conflict = []*errors.Error{
		treasury.ErrAlreadyExecuted,
		treasury.ErrTransactionExpired,
		treasury.ErrAlreadyApproved,
		treasury.ErrInsufficientApprovals,
		treasury.ErrOwnerAlreadyExists,
		treasury.ErrOwnerNotFound,
		treasury.ErrThresholdViolation,
		treasury.ErrInsufficientBalance,
		errors.ErrState,
		errors.ErrDuplicate,
	}
	badRequest = []*errors.Error{
		treasury.ErrInvalidThreshold,
		treasury.ErrInvalidAmount,
		errors.ErrInput,
		errors.ErrMsg,
		errors.ErrModel,
		errors.ErrEmpty,
		errors.ErrAmount,
		errors.ErrOverflow,
		errors.ErrType,
		errors.ErrHuman,
	}
)

func statusCode(err error) int {
	switch {
	case isAny(err, forbidden):
		return http.StatusForbidden
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, conflict):
		return http.StatusConflict
	case isAny(err, badRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, kinds []*errors.Error) bool {
	for _, k := range kinds {
		if k.Is(err) {
			return true
		}
	}
	return false
}

// kindName returns the description of the registered error wrapped by err.
func kindName(err error) string {
	for _, group := range [][]*errors.Error{forbidden, notFound, conflict, badRequest} {
		for _, k := range group {
			if k.Is(err) {
				return k.Error()
			}
		}
	}
	return "internal"
}
