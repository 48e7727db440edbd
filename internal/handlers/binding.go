package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bindingOnce sync.Once

// UseJSONFieldNames makes gin's request validator report fields by their
// JSON names, matching the wizard's own validation errors.
func UseJSONFieldNames() {
	bindingOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindingErrors extracts validator errors from a binding failure.
func bindingErrors(err error) (validator.ValidationErrors, bool) {
	validationErrors, ok := err.(validator.ValidationErrors)
	return validationErrors, ok
}
