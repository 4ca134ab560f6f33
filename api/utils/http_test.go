// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstake/node/builtin/bank"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/runtime"
)

func serve(f HandlerFunc) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	WrapHandlerFunc(f)(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr
}

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("body")), http.StatusBadRequest},
		{"not found", NotFound(errors.New("missing")), http.StatusNotFound},
		{"revert", reverts.ErrStakeAmountTooLow, http.StatusBadRequest},
		{"wrapped revert", errors.WithMessage(reverts.ErrStakeAmountTooLow, "stake"), http.StatusBadRequest},
		{"other", errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(func(http.ResponseWriter, *http.Request) error { return tt.err })
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRevertResponse(t *testing.T) {
	rr := serve(func(http.ResponseWriter, *http.Request) error {
		return reverts.Newf(reverts.UnstakeAccountNotClaimable, "claimable at %d", 3)
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, JSONContentType, rr.Header().Get("Content-Type"))

	var res RevertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, uint32(reverts.UnstakeAccountNotClaimable), res.Code)
	assert.Equal(t, "UnstakeAccountNotClaimable", res.Name)
	assert.Equal(t, reverts.UnstakeAccountNotClaimable.Category().String(), res.Category)
	assert.Contains(t, res.Message, "claimable at 3")
}

func TestOperationError(t *testing.T) {
	assert.Nil(t, OperationError(nil))

	revert := reverts.ErrStakeAmountTooLow
	assert.Equal(t, revert, OperationError(revert))

	status := func(err error) int {
		var he *httpError
		if errors.As(err, &he) {
			return he.status
		}
		return 0
	}
	assert.Equal(t, http.StatusConflict, status(OperationError(bank.ErrInsufficientBalance)))
	assert.Equal(t, http.StatusConflict, status(OperationError(errors.Wrap(stakeprog.ErrStakeLocked, "withdraw"))))
	assert.Equal(t, http.StatusServiceUnavailable, status(OperationError(runtime.ErrStopped)))
	assert.Equal(t, http.StatusServiceUnavailable, status(OperationError(context.Canceled)))
	assert.Zero(t, status(OperationError(errors.New("disk"))))
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"a":1,"b":2}`), &v))
}
