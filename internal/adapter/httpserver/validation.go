package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// decodeAndValidate decodes the body and runs struct validation. The
// returned details list every failing field.
func decodeAndValidate(r *http.Request, dst any) ([]ValidationError, error) {
	if err := decodeJSON(r, dst); err != nil {
		return nil, err
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		details := make([]ValidationError, 0, len(verrs))
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ValidationError{
				Field:   lowerFirst(fe.Field()),
				Code:    strings.ToUpper(fe.Tag()),
				Message: fmt.Sprintf("%s failed %s", lowerFirst(fe.Field()), fe.Tag()),
			})
			fields = append(fields, lowerFirst(fe.Field()))
		}
		return details, fmt.Errorf("%w: invalid fields: %s", domain.ErrInvalidArgument, strings.Join(fields, ", "))
	}
	return nil, nil
}

// validateSessionID accepts only canonical UUIDs.
func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidArgument)
	}
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return fmt.Errorf("%w: malformed session id", domain.ErrInvalidArgument)
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
