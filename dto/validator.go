package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/lumen-learn/lumen_api/shared"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("quest_metric", validateQuestMetric)
	validate.RegisterValidation("achievement_metric", validateAchievementMetric)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateQuestMetric(fl validator.FieldLevel) bool {
	return shared.IsQuestMetric(fl.Field().String())
}

func validateAchievementMetric(fl validator.FieldLevel) bool {
	return shared.IsAchievementMetric(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "gte":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "lte":
				message = fieldError.Field() + " must be at most " + fieldError.Param()
			case "gt":
				message = fieldError.Field() + " must be greater than " + fieldError.Param()
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			case "quest_metric":
				message = fieldError.Field() + " is not a trackable quest metric"
			case "achievement_metric":
				message = fieldError.Field() + " is not an achievement metric"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

type Validator interface {
	Validate() error
}
