// Package validation registers the custom binding rules used by the
// request types.
package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/corebank-service/corebank_service/internal/domain/entities"
)

// Register installs the custom validators on gin's binding engine.
// Safe to call more than once.
func Register() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("product_type", func(fl validator.FieldLevel) bool {
		return entities.ProductType(fl.Field().String()).Validate() == nil
	})
	v.RegisterValidation("account_status", func(fl validator.FieldLevel) bool {
		return entities.AccountStatus(fl.Field().String()).Validate() == nil
	})
	v.RegisterValidation("account_category", func(fl validator.FieldLevel) bool {
		return entities.AccountCategory(fl.Field().String()).Validate() == nil
	})
	v.RegisterValidation("entry_type", func(fl validator.FieldLevel) bool {
		return entities.EntryType(fl.Field().String()).Validate() == nil
	})
}
