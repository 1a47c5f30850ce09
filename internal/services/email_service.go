package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// AWSSESEmailService notifies the portal administrator about registrations
// that wait for approval.
type AWSSESEmailService struct {
	sesClient    *ses.Client
	fromAddress  string
	adminAddress string
	logger       *slog.Logger
}

func NewAWSSESEmailService(region, fromAddress, adminAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:    ses.NewFromConfig(cfg),
		fromAddress:  fromAddress,
		adminAddress: adminAddress,
		logger:       logger,
	}, nil
}

// NotifyPendingRegistration emails the administrator that a new account is
// waiting for approval.
func (s *AWSSESEmailService) NotifyPendingRegistration(ctx context.Context, username, email string) error {
	subject := "Portal registration pending approval"
	body := fmt.Sprintf(
		"A new account is waiting for approval.\n\nUsername: %s\nEmail: %s\n\nApprove it from the account administration panel.",
		username, email,
	)

	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.adminAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send registration notification: %w", err)
	}

	s.logger.Info("pending registration notification sent",
		slog.String("admin_address", s.adminAddress))
	return nil
}

// NoopEmailService is used when email is disabled in configuration.
type NoopEmailService struct{}

func (NoopEmailService) NotifyPendingRegistration(ctx context.Context, username, email string) error {
	return nil
}
