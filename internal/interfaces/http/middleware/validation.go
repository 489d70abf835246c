package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/dto"
)

// SetupValidator makes binding errors report JSON (or form) field names.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// HandleValidationError answers 400 with one detail per failed field.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Données invalides", requestIDFrom(c), validationDetails(err)))
}

func validationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	p := fe.Param()
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "Champ obligatoire"
	case "email":
		return "Adresse e-mail invalide"
	case "min":
		if text {
			return "Au moins " + p + " caractères"
		}
		return "Doit être au moins " + p
	case "max":
		if text {
			return "Au plus " + p + " caractères"
		}
		return "Doit être au plus " + p
	case "len":
		return "Exactement " + p + " caractères"
	case "uuid", "uuid4":
		return "Identifiant invalide"
	case "oneof":
		return "Valeur parmi : " + strings.ReplaceAll(p, " ", ", ")
	case "gt":
		return "Doit être supérieur à " + p
	case "gte":
		return "Doit être supérieur ou égal à " + p
	case "lt":
		return "Doit être inférieur à " + p
	case "lte":
		return "Doit être inférieur ou égal à " + p
	case "url", "http_url":
		return "URL invalide"
	case "e164":
		return "Numéro de téléphone invalide"
	case "numeric":
		return "Valeur numérique attendue"
	case "dive":
		return "Élément invalide"
	default:
		return "Valeur invalide"
	}
}
