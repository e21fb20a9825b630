package soopify

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalizer is implemented by request bodies that clean their fields before
// validation.
type normalizer interface {
	normalize()
}

// bindJSON strictly decodes the request body into dst and validates it.
// Unknown fields and malformed JSON are rejected; a failing required rule
// yields missingMsg. An empty body is validated as an empty object.
func bindJSON(c echo.Context, dst interface{}, missingMsg string) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return badRequest(msgInvalidInput)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return badRequest(missingMsg)
				}
			}
		}
		return badRequest(msgInvalidInput)
	}
	return nil
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
