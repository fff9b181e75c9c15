package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/pkg/mailer"
)

// DisabledSender stands in when SMTP is not configured. Tickets are still
// issued; the participant simply gets no email.
type DisabledSender struct{}

func (DisabledSender) Send(_ context.Context, msg mailer.Message) error {
	zap.L().Warn("mail is not configured, skipping ticket email",
		zap.String("to", msg.To), zap.String("subject", msg.Subject))

	return nil
}
