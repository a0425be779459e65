package validation

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type contactForm struct {
	FirstName string  `json:"first_name" binding:"required,name"`
	Phone     string  `json:"phone" binding:"required,phone"`
	Birthday  *string `json:"birthday" binding:"omitempty,isodate"`
	Password  string  `json:"password" binding:"omitempty,pwd"`
}

func strPtr(s string) *string { return &s }

func TestInit_Aliases(t *testing.T) {
	Init()

	tests := []struct {
		name string
		in   contactForm
		want map[string]string
	}{
		{name: "valid", in: contactForm{FirstName: "Ann", Phone: "+1 (555) 010-0100", Birthday: strPtr("1990-02-28")}},
		{name: "missing name", in: contactForm{Phone: "555"}, want: map[string]string{"first_name": "is required"}},
		{name: "letters in phone", in: contactForm{FirstName: "Ann", Phone: "call me"}, want: map[string]string{"phone": "must be a phone number of 3 to 50 digits and separators"}},
		{name: "separators only", in: contactForm{FirstName: "Ann", Phone: "---"}, want: map[string]string{"phone": "must be a phone number of 3 to 50 digits and separators"}},
		{name: "bad date", in: contactForm{FirstName: "Ann", Phone: "555", Birthday: strPtr("02/28/1990")}, want: map[string]string{"birthday": "must be a date formatted as YYYY-MM-DD"}},
		{name: "short password", in: contactForm{FirstName: "Ann", Phone: "555", Password: "short"}, want: map[string]string{"password": "must be at least 8 characters and at most 72 bytes long"}},
		{name: "multibyte password at 72 bytes", in: contactForm{FirstName: "Ann", Phone: "555", Password: strings.Repeat("é", 36)}},
		{name: "multibyte password past 72 bytes", in: contactForm{FirstName: "Ann", Phone: "555", Password: strings.Repeat("é", 40)}, want: map[string]string{"password": "must be at least 8 characters and at most 72 bytes long"}},
		{name: "eight multibyte characters", in: contactForm{FirstName: "Ann", Phone: "555", Password: strings.Repeat("日", 8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.in)
			assert.Equal(t, tt.want, ToDetails(err))
		})
	}
}

func TestToDetails_NonValidation(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}
