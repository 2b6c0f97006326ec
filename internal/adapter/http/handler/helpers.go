package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON decodes the request body into dst and answers 400 on failure.
// It reports whether the handler may continue.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		HandleInvalidRequest(c, describeBindError(err))
		return false
	}
	return true
}

// describeBindError turns a binding failure into a client facing message
func describeBindError(err error) string {
	var (
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
		validationErr validator.ValidationErrors
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON body"
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return fmt.Sprintf("request body must be a JSON object, got %s", typeErr.Value)
		}
		return fmt.Sprintf("field %q must be %s, got %s", typeErr.Field, describeType(typeErr.Type.String()), typeErr.Value)
	case errors.As(err, &validationErr):
		fields := make([]string, 0, len(validationErr))
		for _, fe := range validationErr {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return fmt.Sprintf("missing required field: %s", strings.Join(fields, ", "))
	default:
		return err.Error()
	}
}

func describeType(goType string) string {
	switch strings.TrimPrefix(goType, "*") {
	case "string":
		return "a string"
	case "[]string":
		return "a list of strings"
	default:
		return goType
	}
}
