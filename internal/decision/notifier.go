// internal/decision/notifier.go
package decision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"vyapara-admin/internal/common/config"
	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/common/metrics"
	"vyapara-admin/internal/models"
)

// EmailSender and SMSSender are satisfied by the common AWS client wrappers
// and mocked in tests.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier delivers decision notifications to the applicant. Sends are
// best-effort; failures are logged and counted, never propagated.
type Notifier struct {
	email  EmailSender
	sms    SMSSender
	cfg    config.NotificationConfig
	logger logger.Logger
}

// NewNotifier creates a Notifier. Either sender may be nil when its channel
// is disabled.
func NewNotifier(email EmailSender, sms SMSSender, cfg config.NotificationConfig, log logger.Logger) *Notifier {
	return &Notifier{
		email:  email,
		sms:    sms,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// SendDecision emails and/or texts the applicant about the outcome.
func (n *Notifier) SendDecision(ctx context.Context, detail *models.ApplicationDetail, action Action, reason, notes string) {
	if detail == nil || detail.Applicant == nil {
		return
	}

	subject, body := decisionMessage(detail, action, reason, notes)

	if n.cfg.Email.Enabled && n.email != nil && detail.Applicant.Email != "" {
		if err := n.sendEmail(ctx, detail.Applicant.Email, subject, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			n.logger.WithError(err).Error("decision email failed", map[string]interface{}{
				"applicationId": detail.ID,
			})
		} else {
			metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
		}
	}

	if n.cfg.SMS.Enabled && n.sms != nil && detail.Applicant.Phone != "" {
		if err := n.sendSMS(ctx, detail.Applicant.Phone, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			n.logger.WithError(err).Error("decision SMS failed", map[string]interface{}{
				"applicationId": detail.ID,
			})
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
		}
	}
}

func decisionMessage(detail *models.ApplicationDetail, action Action, reason, notes string) (string, string) {
	name := detail.BusinessName
	if name == "" {
		name = detail.ApplicationNumber
	}

	switch action {
	case ActionApprove:
		return fmt.Sprintf("Application %s approved", detail.ApplicationNumber),
			fmt.Sprintf("Your business registration application for %s has been approved.", name)
	case ActionReject:
		body := fmt.Sprintf("Your business registration application for %s has been rejected. Reason: %s", name, reason)
		if notes != "" {
			body += " Notes: " + notes
		}
		return fmt.Sprintf("Application %s rejected", detail.ApplicationNumber), body
	default:
		return fmt.Sprintf("Application %s needs changes", detail.ApplicationNumber),
			fmt.Sprintf("Your business registration application for %s requires changes: %s", name, notes)
	}
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
