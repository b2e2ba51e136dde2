package notify

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/config"
)

// Sender delivers a rendered digest.
type Sender interface {
	Send(ctx context.Context, digest Digest) error
}

// SMTPSender sends digests over authenticated SMTP.
type SMTPSender struct {
	cfg config.EmailConfig
}

// NewSMTPSender builds a sender from email configuration.
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, eris.New("notify: smtp host not configured")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, eris.New("notify: from and to addresses required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) Send(ctx context.Context, digest Digest) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return eris.Wrapf(err, "notify: from address %s", s.cfg.From)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return eris.Wrap(err, "notify: to addresses")
	}
	msg.Subject(digest.Subject)
	msg.SetBodyString(mail.TypeTextPlain, digest.Body)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return eris.Wrap(err, "notify: build smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return eris.Wrapf(err, "notify: send digest to %d recipients", len(s.cfg.To))
	}

	zap.L().Info("digest delivered",
		zap.String("subject", digest.Subject),
		zap.Int("recipients", len(s.cfg.To)),
	)
	return nil
}
