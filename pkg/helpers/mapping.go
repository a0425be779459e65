package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/go-contactbook/pkg/mailer"
	mailtpl "github.com/oksasatya/go-contactbook/pkg/mailer/templates"
)

// EnsureRecipientAndEmail fills Email and RecipientEmail in the template data
// from job.To when the producer left them out.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// NormalizeTemplate lower-cases the template name and maps older names onto
// the current ones.
func NormalizeTemplate(job *mailer.EmailJob) {
	name := strings.ToLower(strings.TrimSpace(job.Template))
	if name == "forgot_password" {
		name = mailtpl.ResetPassword
	}
	job.Template = name
}

// ValidateEmailJob rejects jobs the worker can never deliver; they are
// dropped instead of requeued.
func ValidateEmailJob(job mailer.EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return errors.New("missing recipient")
	}
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return fmt.Errorf("unknown template %q", job.Template)
		}
		return nil
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return errors.New("either template or subject with text/html is required")
	}
	return nil
}
