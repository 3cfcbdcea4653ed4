package photos

import (
	"errors"
	"net/http"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrDecode               = errors.New("invalid image")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrWrite                = errors.New("write failed")
)

// HTTPStatus maps a photo error onto a response status. Oversize and
// unsupported uploads are plain 400s, which the admin UI already shows
// with the message
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnsupportedMediaType),
		errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the error message is safe to return
func IsClientError(err error) bool {
	return HTTPStatus(err) < http.StatusInternalServerError
}
