package utils

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// RegisterValidations adds the "day" (YYYY-MM-DD) and "clock" (HH:mm) tags used by
// request bodies, with messages for trans.
func RegisterValidations(validate *validator.Validate, trans ut.Translator) error {
	tags := []struct {
		tag    string
		layout string
		msg    string
	}{
		{"day", DateLayout, "{0} must be a date like 2025-03-10"},
		{"clock", ClockLayout, "{0} must be a time like 09:30"},
	}

	for _, t := range tags {
		layout := t.layout
		if err := validate.RegisterValidation(t.tag, func(fl validator.FieldLevel) bool {
			_, err := time.Parse(layout, fl.Field().String())
			return err == nil
		}); err != nil {
			return err
		}

		tag, msg := t.tag, t.msg
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			s, _ := ut.T(tag, fe.Field())
			return s
		}); err != nil {
			return err
		}
	}
	return nil
}

// ParseDay reads a YYYY-MM-DD value as midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}
