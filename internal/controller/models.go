package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Reason string `json:"reason"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Auth requests

type RegisterReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// New gig request

type NewGigReq struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Budget      float64 `json:"budget" validate:"gt=0,lt=1000000000000"`
}

// New bid request

type NewBidReq struct {
	GigId   string  `json:"gigId" validate:"required,max=100"`
	Message string  `json:"message" validate:"required,max=2000"`
	Price   float64 `json:"price" validate:"gt=0,lt=1000000000000"`
}

// parseReq decodes data into req and validates it against its struct tags.
func parseReq[T any](v *validator.Validate, data []byte) (*T, error) {
	req := new(T)

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, fmt.Errorf("malformed request body: %w", err)
	}

	err = v.Struct(req)
	if err != nil {
		return nil, errors.New(validationMessage(err))
	}

	return req, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("field '%s' %s", jsonFieldName(fe.Field()), fieldMessage(fe)))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "exceeds length limit " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

func jsonFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
