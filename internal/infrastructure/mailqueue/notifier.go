package mailqueue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/config"
	"github.com/oksasatya/go-contactbook/pkg/mailer"
	mailtpl "github.com/oksasatya/go-contactbook/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier turns account emails into mailer.EmailJob messages for the
// email worker. With sending disabled or no publisher it only logs.
type Notifier struct {
	Pub    Publisher
	Cfg    *config.Config
	Logger *logrus.Logger

	now func() time.Time
}

func NewNotifier(pub Publisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Cfg: cfg, Logger: logger, now: time.Now}
}

func (n *Notifier) SendVerification(ctx context.Context, email, link string, expiresAt time.Time) error {
	data := mailtpl.NewVerifyEmailData(n.Cfg, email, link,
		mailtpl.WithTime(n.now()),
		mailtpl.WithExpiresAt(expiresAt),
	)
	return n.publish(ctx, mailer.EmailJob{To: email, Template: mailtpl.VerifyEmail, Data: data})
}

func (n *Notifier) SendPasswordReset(ctx context.Context, email, link string, expiresAt time.Time) error {
	data := mailtpl.NewResetPasswordData(n.Cfg, email, link,
		mailtpl.WithTime(n.now()),
		mailtpl.WithExpiresAt(expiresAt),
	)
	return n.publish(ctx, mailer.EmailJob{To: email, Template: mailtpl.ResetPassword, Data: data})
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) error {
	if n.Pub == nil || !n.Cfg.MailSendEnabled {
		if n.Logger != nil {
			n.Logger.WithField("template", job.Template).Debug("email sending disabled; job dropped")
		}
		return nil
	}
	return n.Pub.PublishJSON(ctx, job)
}
