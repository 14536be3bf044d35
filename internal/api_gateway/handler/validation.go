package handler

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("money", validateMoney)
	})
	return err
}

// validateMoney accepts positive amounts with at most two fractional digits
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Truncate(2))
}

// parseMoney converts a value that already passed the money rule
func parseMoney(n fmt.Stringer) (decimal.Decimal, error) {
	return decimal.NewFromString(n.String())
}
