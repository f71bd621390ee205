package constants

import "net/http"

type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound        = NewCodedError("not found", http.StatusNotFound)
	ErrRunNotFound       = NewCodedError("run not found", http.StatusNotFound)
	ErrUnauthorized      = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrMissingAuthCookie = NewCodedError("missing auth cookie", http.StatusUnauthorized)
	ErrInvalidConfig     = NewCodedError("invalid pipeline config", http.StatusBadRequest)
	ErrBadRequest        = NewCodedError("bad request", http.StatusBadRequest)

	ErrBandNotFound        = NewCodedError("band not found in raster", http.StatusUnprocessableEntity)
	ErrUnsupportedReducer  = NewCodedError("unsupported reducer", http.StatusBadRequest)
	ErrUnsupportedFormat   = NewCodedError("unsupported output format", http.StatusBadRequest)
	ErrUnsupportedGeometry = NewCodedError("unsupported geometry type", http.StatusUnprocessableEntity)
	ErrUnknownSource       = NewCodedError("unknown dataset source", http.StatusBadRequest)
)
