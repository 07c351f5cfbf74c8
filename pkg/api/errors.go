package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/karina-jasmin/quran-collate/pkg/markup"
	"github.com/karina-jasmin/quran-collate/pkg/runlog"
	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Word    string `json:"word,omitempty"`
	Char    string `json:"char,omitempty"`
	Missing string `json:"diacritic,omitempty"`
}

// describeError maps an endpoint error onto an HTTP status and body.
func describeError(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	var (
		bad     *badRequestError
		unknown *segment.UnknownCharacterError
		missing *segment.MissingDiacriticError
		broken  *segment.MalformedWordError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, resp
	case errors.Is(err, markup.ErrInvalidDocument):
		resp.Code = "invalid_document"
		return http.StatusBadRequest, resp
	case errors.As(err, &unknown):
		resp.Code, resp.Word, resp.Char = "unknown_character", unknown.Ordinal, string(unknown.Char)
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &missing):
		resp.Code, resp.Word, resp.Missing = "missing_diacritic", missing.Ordinal, missing.Descriptor
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &broken):
		resp.Code, resp.Word = "malformed_word", broken.Ordinal
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, tables.ErrUnknownSet):
		resp.Code = "unknown_tables"
		return http.StatusNotFound, resp
	case errors.Is(err, runlog.ErrNotFound), errors.Is(err, errNoLedger):
		return http.StatusNotFound, resp
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, resp
	}
	return http.StatusInternalServerError, resp
}
