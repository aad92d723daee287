package payments

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"

	"golang-payment-sheet/internal/services/payments/types"
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// iso4217ci accepts tender ISO 4217 codes in any letter case; the provider wants
	// lower case while the standard table is upper case.
	err := v.RegisterValidation("iso4217ci", func(fl validator.FieldLevel) bool {
		return validCurrency(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("registering iso4217ci validation: %v", err))
	}

	return v
}

// tenderCurrencies holds the current legal tender codes. Test, metal, fund
// and withdrawn codes (XTS, XXX, XAU, DEM, ...) are left out.
var tenderCurrencies = func() map[string]struct{} {
	codes := map[string]struct{}{}
	for it := currency.Query(); it.Next(); {
		codes[it.Unit().String()] = struct{}{}
	}
	return codes
}()

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, ok := tenderCurrencies[strings.ToUpper(code)]
	return ok
}

func (s *Service) validateRequest(req types.PaymentRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "gt":
		return &ValidationError{Field: fe.Field(), Reason: "must be a positive integer"}
	case "iso4217ci":
		return &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("%q is not a supported currency code", fe.Value())}
	default:
		return &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("failed %s check", fe.Tag())}
	}
}
