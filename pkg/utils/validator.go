package utils

import (
	"context"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return models.Genre(fl.Field().String()).Valid()
	})
}

func ValidateStruct(ctx context.Context, s interface{}) error {
	return validate.StructCtx(ctx, s)
}
