package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках имена полей как в JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest проверяет DTO по тегам validate
func validateRequest(req any, sentinel error) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return entity.NewValidationError(fe.Field(), fmt.Errorf("%w: failed %s", sentinel, fe.Tag()))
	}
	return entity.NewValidationError("request", fmt.Errorf("%w: %v", sentinel, err))
}
