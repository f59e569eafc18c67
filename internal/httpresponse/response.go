// Package httpresponse writes the JSON envelope used by every REST endpoint.
package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperr "goboard/internal/errors"
)

type Response struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

const internalErrorJSON = `{"status": 500, "body": {"error": "internal server error"}}`

func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	payload, err := json.Marshal(Response{Status: status, Body: body})
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// WriteError maps a service error onto the proper HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	WriteResponseWithStatus(w, statusFor(err), ErrorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrResourceInUse), errors.Is(err, apperr.ErrControlHeld):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrProfileNotFound), errors.Is(err, apperr.ErrNoGame):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidBoardSize),
		errors.Is(err, apperr.ErrInvalidDisplaySize),
		errors.Is(err, apperr.ErrInvalidProfileName):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrCameraUnavailable), errors.Is(err, apperr.ErrNoReference):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, internalErrorJSON)
}
