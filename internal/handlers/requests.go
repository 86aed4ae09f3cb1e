package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// ResultsRequest is a fetch of a boundary's suspended content. The query
// limit is domain.MaxQueryLength.
type ResultsRequest struct {
	Query string `query:"q" validate:"max=512"`
	Slot  string `query:"slot" validate:"omitempty,alphanum,max=32"`
	Key   string `query:"key" validate:"required,uuid"`
	Seq   uint64 `query:"seq" validate:"required"`
}

// SearchAPIRequest is a JSON search. The query limit is domain.MaxQueryLength.
type SearchAPIRequest struct {
	Query string `query:"q" validate:"max=512"`
}
