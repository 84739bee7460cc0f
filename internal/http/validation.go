package http

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/huandu/xstrings"
	"github.com/tidwall/gjson"

	"ely.by/tailor/internal/textures"
)

func createFormsValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	regexUsername := regexp.MustCompile(`^[-\w.!$%^&*()\[\]:;]+$`)
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return regexUsername.MatchString(fl.Field().String())
	})

	_ = validate.RegisterValidation("texture_type", func(fl validator.FieldLevel) bool {
		_, err := textures.ParseTextureType(fl.Field().String())
		return err == nil
	})

	_ = validate.RegisterValidation("json_object", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return gjson.Valid(value) && gjson.Parse(value).IsObject()
	})

	validate.RegisterStructValidationMapRules(map[string]string{
		"Url":   "required,http_url",
		"Model": "omitempty,oneof=slim steve classic default",
	}, urlForm{})

	validate.RegisterStructValidationMapRules(map[string]string{
		"Model": "omitempty,oneof=slim steve classic default",
	}, uploadForm{})

	validate.RegisterStructValidationMapRules(map[string]string{
		"Username": "required,username,max=21",
	}, playerForm{})

	validate.RegisterStructValidationMapRules(map[string]string{
		"Type":     "required,texture_type",
		"Url":      "required,http_url",
		"Metadata": "omitempty,json_object",
	}, texturesForm{})

	return validate
}

// validateForm responds with 400 Bad Request when the form is invalid
func validateForm(validate *validator.Validate, resp http.ResponseWriter, form any) bool {
	err := validate.Struct(form)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apiBadRequest(resp, mapValidationErrors(validationErrors))
	} else {
		apiBadRequest(resp, map[string][]string{
			"body": {err.Error()},
		})
	}

	return false
}

// Field names in the errors map are the same as the names of the form fields
func mapValidationErrors(err validator.ValidationErrors) map[string][]string {
	result := make(map[string][]string, len(err))
	for _, e := range err {
		field := xstrings.FirstRuneToLower(e.Field())
		result[field] = append(result[field], formatValidationErr(e))
	}

	return result
}

func formatValidationErr(err validator.FieldError) string {
	field := xstrings.FirstRuneToLower(err.Field())
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", field)
	case "username":
		return fmt.Sprintf("%s must be a valid username", field)
	case "max":
		return fmt.Sprintf("%s must be a maximum of %s in length", field, err.Param())
	case "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, err.Param())
	case "texture_type":
		return fmt.Sprintf("%s must be one of [SKIN CAPE ELYTRA]", field)
	case "json_object":
		return fmt.Sprintf("%s must be a JSON object", field)
	default:
		return fmt.Sprintf(`Field validation for "%s" failed on the "%s" tag`, field, err.Tag())
	}
}

func isSlimModel(model string) bool {
	return model == "slim"
}
