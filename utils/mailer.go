package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var sesClient *ses.Client

// InitMailer sets up the SES client. Only call it when reminder emails are
// enabled; without it the senders below fail softly instead of panicking.
func InitMailer(ctx context.Context) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("aws config load failed: %w", err)
	}
	sesClient = ses.NewFromConfig(cfg)
	return nil
}

// generic SES sender
func sendEmail(ctx context.Context, to string, subject string, body string) error {
	if sesClient == nil {
		return errNoMailer
	}
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(os.Getenv("SES_EMAIL")),
	}

	_, err := sesClient.SendEmail(ctx, input)
	if err != nil {
		slog.Error("ses send failed", "to", to, "err", err)
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

var errNoMailer = fmt.Errorf("mailer not initialised")

// SendDailySummaryEmail delivers the evening nudge with today's totals.
func SendDailySummaryEmail(ctx context.Context, to string, name string, summary string) error {
	subject := "Your HealthyLife daily summary"
	body := fmt.Sprintf("Hi %s,\n\n%s\n\nSee you tomorrow.", name, summary)
	return sendEmail(ctx, to, subject, body)
}

// SendWelcomeEmail greets a new account. Best effort; registration never
// fails because of it.
func SendWelcomeEmail(ctx context.Context, to string, name string) error {
	subject := "Welcome to HealthyLife"
	body := fmt.Sprintf("Hi %s,\n\nYour account is ready. Fill in your profile to get daily goals tailored to you.", name)
	return sendEmail(ctx, to, subject, body)
}
