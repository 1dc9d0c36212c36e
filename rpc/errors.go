package rpc

import (
	"errors"
	"net/http"

	"creatorfund/core/runtime"
	"creatorfund/native/creatorfund"
	"creatorfund/native/token"
)

type rpcFailure struct {
	status  int
	code    int
	message string
	data    interface{}
}

func invalidParams(message string, err error) *rpcFailure {
	f := &rpcFailure{status: http.StatusBadRequest, code: codeInvalidParams, message: message}
	if err != nil {
		f.data = err.Error()
	}
	return f
}

// ProgramErrorData is attached to program failures so clients can branch on
// the stable code rather than the message.
type ProgramErrorData struct {
	Code  uint32 `json:"code"`
	Error string `json:"error"`
}

var notFoundErrors = []error{
	creatorfund.ErrPostNotFound,
	creatorfund.ErrVoteNotFound,
	token.ErrAccountNotFound,
}

var transferErrors = []error{
	token.ErrInsufficientFunds,
	token.ErrMintMismatch,
	token.ErrAuthorizationFailure,
	token.ErrOverflow,
	token.ErrNotTokenAccount,
}

// failureFromError classifies an engine error. Program errors win over the
// generic classes because a program error may wrap a store error.
func failureFromError(message string, err error) *rpcFailure {
	if code, ok := creatorfund.ErrorCode(err); ok {
		return &rpcFailure{
			status:  http.StatusOK,
			code:    codeProgramError,
			message: message,
			data:    ProgramErrorData{Code: code, Error: err.Error()},
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return &rpcFailure{status: http.StatusNotFound, code: codeNotFound, message: message, data: err.Error()}
		}
	}
	for _, target := range transferErrors {
		if errors.Is(err, target) {
			return &rpcFailure{status: http.StatusOK, code: codeTransferFailed, message: message, data: err.Error()}
		}
	}
	if errors.Is(err, runtime.ErrMissingSigner) || errors.Is(err, runtime.ErrAccountReadOnly) || errors.Is(err, runtime.ErrIllegalOwner) {
		return &rpcFailure{status: http.StatusOK, code: codeUnauthorized, message: message, data: err.Error()}
	}
	return &rpcFailure{status: http.StatusInternalServerError, code: codeServerError, message: message, data: err.Error()}
}
