// Package render writes JSON responses and maps service errors to HTTP statuses.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"error": message}. Unexpected errors are logged and their raw message is returned.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "error", err)
	}

	JSON(w, r, status, errorResponse{Error: err.Error()})
}

// Decode reads a JSON body into dst and runs its validate tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}

	return Validate(dst)
}

// DecodeOptional is Decode for endpoints whose body may be empty.
func DecodeOptional(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validationf("invalid request body: %v", err)
	}

	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return apperr.Validation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ParseTime accepts RFC 3339 timestamps and plain dates. Plain dates are read as midnight in loc
// and reported with dateOnly set.
func ParseTime(value string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	t, err = time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is not a valid date", value)
	}

	return t, true, nil
}

// ParseEndTime is ParseTime for the upper bound of a range: a plain date covers the whole day.
func ParseEndTime(value string, loc *time.Location) (time.Time, error) {
	t, dateOnly, err := ParseTime(value, loc)
	if err != nil || !dateOnly {
		return t, err
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc), nil
}

// DateRange reads the required startDate and endDate query parameters.
func DateRange(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		return time.Time{}, time.Time{}, apperr.Validation("startDate and endDate are required")
	}

	start, _, err := ParseTime(q.Get("startDate"), loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validationf("startDate: %v", err)
	}

	end, err := ParseEndTime(q.Get("endDate"), loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validationf("endDate: %v", err)
	}

	return start, end, nil
}

// IDParam reads a positive decimal id from the URL. Signs, leading zeros and hex or octal
// prefixes are rejected so each id has exactly one spelling.
func IDParam(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)

	if raw == "" || raw[0] == '0' || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, apperr.Validationf("invalid id %q", raw)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid id %q", raw)
	}

	return id, nil
}
