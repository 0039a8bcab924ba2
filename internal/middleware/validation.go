package middleware

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// validate reads the same binding tags as gin and reports fields by their JSON names
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
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
	return v
}

// ValidatedBodyKey holds the bound body set by ValidateRequest
const ValidatedBodyKey = "validatedBody"

// ValidateRequest decodes and validates a JSON body into a fresh value of model's type.
// Handlers read it back with c.MustGet(ValidatedBodyKey).
func ValidateRequest(model interface{}) gin.HandlerFunc {
	typ := reflect.TypeOf(model)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	return func(c *gin.Context) {
		obj := reflect.New(typ).Interface()

		if c.Request.Body == nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails("empty body")
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
		if err := json.NewDecoder(c.Request.Body).Decode(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}

		if err := validate.Struct(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}

		c.Set(ValidatedBodyKey, obj)
		c.Next()
	}
}
