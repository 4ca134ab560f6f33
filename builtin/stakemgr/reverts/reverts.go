// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the failures of stake manager operations.
// A revert aborts the whole operation and nothing it did is kept.
package reverts

import (
	"errors"
	"fmt"
)

// ErrRevert is the failure of an operation with a code.
type ErrRevert struct {
	code   Code
	detail string
}

// New returns a revert with the given code.
func New(code Code) *ErrRevert {
	return &ErrRevert{code: code}
}

// Newf returns a revert with the given code and a formatted detail.
func Newf(code Code, format string, args ...any) *ErrRevert {
	return &ErrRevert{code: code, detail: fmt.Sprintf(format, args...)}
}

func (e *ErrRevert) Error() string {
	if e.detail == "" {
		return e.code.Message()
	}
	return e.code.Message() + ": " + e.detail
}

func (e *ErrRevert) Code() Code {
	return e.code
}

// Is reports whether target is a revert with the same code.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.code == e.code
}

// IsRevertErr returns whether err is or wraps a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// CodeOf returns the code of the revert wrapped in err.
func CodeOf(err error) (Code, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code, true
	}
	return 0, false
}
