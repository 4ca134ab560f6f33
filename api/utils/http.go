// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/rstake/node/builtin/bank"
	"github.com/rstake/node/builtin/minter"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/runtime"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// RevertResponse is the body of a rejected operation.
type RevertResponse struct {
	Code     uint32 `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// rejections of builtin programs, reported to the caller like reverts
var rejections = []error{
	stakemgr.ErrNotInitialized,
	stakemgr.ErrAlreadyInitialized,
	stakeprog.ErrRecordExists,
	stakeprog.ErrRecordNotFound,
	stakeprog.ErrAuthorityNotMatch,
	stakeprog.ErrAlreadyDelegated,
	stakeprog.ErrNotDelegated,
	stakeprog.ErrNotActive,
	stakeprog.ErrVoterNotMatch,
	stakeprog.ErrSameVoter,
	stakeprog.ErrInvalidAmount,
	stakeprog.ErrInsufficientStake,
	stakeprog.ErrInsufficientFunds,
	stakeprog.ErrStakeLocked,
	minter.ErrAlreadyInitialized,
	minter.ErrAdminNotMatch,
	minter.ErrMintAuthorityNotMatch,
	minter.ErrOwnerNotMatch,
	minter.ErrInsufficientFunds,
	minter.ErrOverflow,
	bank.ErrInsufficientBalance,
}

// OperationError maps the error of a runtime operation to a http error.
func OperationError(err error) error {
	if err == nil || reverts.IsRevertErr(err) {
		return err
	}
	for _, r := range rejections {
		if errors.Is(err, r) {
			return HTTPError(err, http.StatusConflict)
		}
	}
	if errors.Is(err, runtime.ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return HTTPError(err, http.StatusServiceUnavailable)
	}
	return err
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// a revert is responded as a RevertResponse with http.StatusBadRequest,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		if code, ok := reverts.CodeOf(err); ok {
			w.Header().Set("Content-Type", JSONContentType)
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(&RevertResponse{
				Code:     uint32(code),
				Name:     code.String(),
				Category: code.Category().String(),
				Message:  err.Error(),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any
