package controllers

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"prestamos/models"
)

var numeralPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?(,[0-9]+)?$`)

// field/tag specific messages, the rest fall back to the generic ones below
var messages = map[string]string{
	"clienteRef.required":      "Cliente es requerido",
	"empleadoRef.required":     "Empleado es requerido",
	"clienteRef.refto":         "El cliente seleccionado no es válido",
	"empleadoRef.refto":        "El empleado seleccionado no es válido",
	"barrioRef.refto":          "El barrio seleccionado no es válido",
	"monto_prestado.required":  "Monto es requerido",
	"monto_prestado.numeral":   "El monto debe contener solo caracteres numéricos",
	"monto_abonado.numeral":    "El monto debe contener solo caracteres numéricos",
	"interes.gt":               "El interés debe ser mayor que cero",
	"modalidadDePago.required": "Modalidad de pago es requerida",
	"estado.required":          "Estado es requerido",
	"fechaInicio.required":     "Fecha de inicio es requerida",
	"fechaFinal.required":      "Fecha límite es requerida",
	"fechaFinal.gtefield":      "La fecha límite debe ser posterior a la fecha de inicio",
	"barrioRef.required":       "Barrio es requerido",
	"nombres.required":         "Nombres son requeridos",
	"apellidos.required":       "Apellidos son requeridos",
	"correo.email":             "Correo inválido",
	"precio.gte":               "El precio no puede ser negativo",
}

// FormValidator checks request bodies before any store call
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator creates a validator reporting fields by their json names
func NewFormValidator() *FormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("numeral", isNumeral)
	v.RegisterStructValidation(loanRefs, models.Loan{})
	v.RegisterStructValidation(itemRefs, models.Item{})
	return &FormValidator{validate: v}
}

// isNumeral accepts es-CO numerals like "1.500.000" or "1500,50"
func isNumeral(fl validator.FieldLevel) bool {
	value := strings.ReplaceAll(strings.TrimSpace(fl.Field().String()), ".", "")
	return numeralPattern.MatchString(value)
}

func loanRefs(sl validator.StructLevel) {
	loan := sl.Current().Interface().(models.Loan)
	reportRef(sl, loan.ClienteRef, "clienteRef", "ClienteRef", models.CollectionClients)
	reportRef(sl, loan.EmpleadoRef, "empleadoRef", "EmpleadoRef", models.CollectionEmployees)
}

func itemRefs(sl validator.StructLevel) {
	item := sl.Current().Interface().(models.Item)
	reportRef(sl, item.BarrioRef, "barrioRef", "BarrioRef", models.CollectionNeighborhoods)
}

func reportRef(sl validator.StructLevel, ref *models.Ref, field, structField, collection string) {
	if models.ExpectCollection(ref, collection) != nil {
		sl.ReportError(ref, field, structField, "refto", collection)
	}
}

// Validate returns one message per failing field, or nil when form is valid
func (v *FormValidator) Validate(form interface{}) map[string]string {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	if msg, ok := messages[e.Field()+"."+e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "required":
		return "El campo " + e.Field() + " es requerido"
	case "oneof":
		return "El campo " + e.Field() + " debe ser uno de: " + e.Param()
	case "gt", "gte":
		return "El campo " + e.Field() + " debe ser mayor que " + e.Param()
	default:
		return "El campo " + e.Field() + " es inválido"
	}
}
