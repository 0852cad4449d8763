package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Validator valida DTOs de entrada y devuelve los errores por campo (nombre json).
type Validator struct {
	v *validator.Validate
}

// NewValidator registra decimal.Decimal como float64 para que gt/gte/ne funcionen sobre montos.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{v: v}
}

// Struct devuelve nil si s es válido; si no, mensajes por campo (ej. "items[0].qty").
func (val *Validator) Struct(s interface{}) map[string][]string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"_": {err.Error()}}
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out[field] = append(out[field], message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "gte":
		return "debe ser mayor o igual a " + fe.Param()
	case "ne":
		return "no puede ser " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "email":
		return "email inválido"
	case "alphanum":
		return "solo letras y números"
	default:
		return "inválido (" + fe.Tag() + ")"
	}
}

// bind parsea el body y valida. Devuelve false si ya respondió con error.
func bind(c *fiber.Ctx, val *Validator, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
		return false
	}
	if fields := val.Struct(out); fields != nil {
		_ = validationFailed(c, fields)
		return false
	}
	return true
}
