package utils

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidations(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	require.NoError(t, RegisterValidations(validate, trans))

	type req struct {
		Date string `json:"date" validate:"day"`
		End  string `json:"end" validate:"omitempty,clock"`
	}

	assert.NoError(t, validate.Struct(req{Date: "2025-03-10", End: "17:30"}))
	assert.NoError(t, validate.Struct(req{Date: "2025-03-10"}))

	err := validate.Struct(req{Date: "10/03/2025"})
	require.Error(t, err)
	errs := err.(validator.ValidationErrors)
	assert.Equal(t, "Date must be a date like 2025-03-10", errs[0].Translate(trans))

	err = validate.Struct(req{Date: "2025-03-10", End: "25:00"})
	require.Error(t, err)
	assert.Equal(t, "End must be a time like 09:30", err.(validator.ValidationErrors)[0].Translate(trans))
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	day, err := ParseDay("2025-03-10", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), day)

	_, err = ParseDay("2025-02-30", loc)
	assert.Error(t, err)
}
