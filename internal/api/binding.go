package api

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// jsonFieldNames mapea los nombres de campo Go a sus nombres JSON cuando la
// conversión genérica a snake_case no alcanza (siglas como SIPX o kWh)
var jsonFieldNames = map[string]string{
	"SIPXPrice":      "sipx_price",
	"ConsumptionKWh": "consumption_kWh",
	"ProductionKWh":  "production_kWh",
}

// bindingDetails traduce un error de binding de gin a la lista de errores
// por campo del payload 422. Se reportan todos los campos que fallaron.
func bindingDetails(err error) []models.ErrorDetail {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]models.ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			name, ok := jsonFieldNames[fieldErr.Field()]
			if !ok {
				name = toSnakeCase(fieldErr.Field())
			}
			details = append(details, models.ErrorDetail{
				Field: name,
				Issue: "failed on the '" + fieldErr.Tag() + "' tag",
			})
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []models.ErrorDetail{
			{Field: field, Issue: "expected type " + typeErr.Type.String()},
		}
	}

	return []models.ErrorDetail{
		{Field: "body", Issue: err.Error()},
	}
}

// toSnakeCase convierte el nombre del campo Go al nombre JSON del request
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
