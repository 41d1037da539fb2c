package book

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"libraryapi/internal/apperr"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("genre", validateGenre)
}

func validateGenre(fl validator.FieldLevel) bool {
	_, ok := ParseGenre(fl.Field().String())
	return ok
}

func validateInput(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "gte", "lte":
			message = fmt.Sprintf("%s must be between 0 and 100", field)
		case "genre":
			message = fmt.Sprintf("%s must be one of %s", field, genreList())
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		fields = append(fields, apperr.FieldError{Field: field, Message: message})
	}
	return apperr.Validation("invalid book", fields...)
}

func genreList() string {
	names := make([]string, len(Genres))
	for i, g := range Genres {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}
