package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// LoginConfirmationDetails carries the attempt context rendered into the
// "was this you?" email. Token is the plaintext confirmation token; it
// exists only in this message, never in storage or logs.
type LoginConfirmationDetails struct {
	IPAddress     string
	Device        models.DeviceInfo
	Location      models.GeoLocation
	AttemptedAt   time.Time
	IsNewDevice   bool
	IsNewLocation bool
	Token         string
}

// SecurityAlertDetails carries the context for a post-denial alert.
type SecurityAlertDetails struct {
	AlertType    string
	Details      string
	ActionsTaken []string
}

// NotificationDispatcher delivers out-of-band security messages.
// Both operations are best-effort: callers log failures and move on.
type NotificationDispatcher interface {
	SendLoginConfirmation(ctx context.Context, email, name string, details LoginConfirmationDetails) error
	SendSecurityAlert(ctx context.Context, email, name string, details SecurityAlertDetails) error
}

// AWSSESDispatcher sends notifications using AWS SES
type AWSSESDispatcher struct {
	sesClient   *ses.Client
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

// NewAWSSESDispatcher creates a new AWS SES notification dispatcher
func NewAWSSESDispatcher(region, fromAddress, baseURL string, logger *slog.Logger) (*AWSSESDispatcher, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESDispatcher{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      logger,
	}, nil
}

// SendLoginConfirmation delivers the confirm/deny message for a suspicious login
func (s *AWSSESDispatcher) SendLoginConfirmation(ctx context.Context, email, name string, details LoginConfirmationDetails) error {
	confirmLink := fmt.Sprintf("%s/security/confirm?token=%s", s.baseURL, details.Token)
	denyLink := fmt.Sprintf("%s/security/deny?token=%s", s.baseURL, details.Token)

	reason := "a device or location we haven't seen before"
	switch {
	case details.IsNewDevice && details.IsNewLocation:
		reason = "a new device in a new location"
	case details.IsNewDevice:
		reason = "a new device"
	case details.IsNewLocation:
		reason = "a new location"
	}

	textBody := fmt.Sprintf(`Hi %s,

We noticed a sign-in to your account from %s.

    Time:     %s
    IP:       %s
    Device:   %s on %s
    Location: %s, %s

If this was you, confirm it here (link valid for 24 hours):
%s

If this was NOT you, secure your account now:
%s

Denying will flag recent sessions from this address and alert you to any further activity.
`,
		name,
		reason,
		details.AttemptedAt.UTC().Format(time.RFC1123),
		details.IPAddress,
		details.Device.BrowserFamily, details.Device.OSFamily,
		details.Location.City, details.Location.Country,
		confirmLink,
		denyLink,
	)

	return s.send(ctx, email, "Was this you? New sign-in to your account", textBody)
}

// SendSecurityAlert delivers a security alert after a denied login
func (s *AWSSESDispatcher) SendSecurityAlert(ctx context.Context, email, name string, details SecurityAlertDetails) error {
	textBody := fmt.Sprintf(`Hi %s,

Security alert: %s

%s

Actions taken:
  - %s

If you have questions, contact support from your registered email address.
`,
		name,
		details.AlertType,
		details.Details,
		strings.Join(details.ActionsTaken, "\n  - "),
	)

	return s.send(ctx, email, "Security alert for your account", textBody)
}

func (s *AWSSESDispatcher) send(ctx context.Context, to, subject, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES", slog.Any("error", err))
		return fmt.Errorf("%w: %v", models.ErrDispatchFailed, err)
	}

	s.logger.Info("security email sent", slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
