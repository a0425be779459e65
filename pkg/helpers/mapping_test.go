package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-contactbook/pkg/mailer"
)

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := mailer.EmailJob{To: "ann@example.com", Data: map[string]any{"Email": ""}}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "ann@example.com", job.Data["Email"])
	assert.Equal(t, "ann@example.com", job.Data["RecipientEmail"])

	job = mailer.EmailJob{To: "ann@example.com", Data: map[string]any{"Email": "other@example.com"}}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "other@example.com", job.Data["Email"])
}

func TestNormalizeTemplate(t *testing.T) {
	job := mailer.EmailJob{Template: " Forgot_Password "}
	NormalizeTemplate(&job)
	assert.Equal(t, "reset_password", job.Template)
}

func TestValidateEmailJob(t *testing.T) {
	tests := []struct {
		name    string
		job     mailer.EmailJob
		wantErr bool
	}{
		{name: "template", job: mailer.EmailJob{To: "a@x.test", Template: "verify_email"}},
		{name: "raw", job: mailer.EmailJob{To: "a@x.test", Subject: "hi", Text: "body"}},
		{name: "no recipient", job: mailer.EmailJob{Template: "verify_email"}, wantErr: true},
		{name: "unknown template", job: mailer.EmailJob{To: "a@x.test", Template: "login_otp"}, wantErr: true},
		{name: "raw without body", job: mailer.EmailJob{To: "a@x.test", Subject: "hi"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmailJob(tt.job)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
