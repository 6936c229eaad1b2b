package mailer

import (
	"context"
	"fmt"

	"github.com/clubsupply/supplydesk-backend/pkg/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Client sends transactional email through SendGrid.
type Client struct {
	send func(message *mail.SGMailV3) error
	from *mail.Email
}

// New builds a mailer from configuration.
func New(cfg config.SendgridConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from email is required")
	}

	sg := sendgrid.NewSendClient(cfg.APIKey)
	return &Client{
		send: func(message *mail.SGMailV3) error {
			resp, err := sg.Send(message)
			if err != nil {
				return fmt.Errorf("sendgrid send: %w", err)
			}
			if resp.StatusCode >= 400 {
				return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
			}
			return nil
		},
		from: mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
	}, nil
}

// SendChallengeCode delivers a one-time code for registration or password reset.
func (c *Client) SendChallengeCode(ctx context.Context, toEmail, code, purpose string) error {
	if c == nil || c.send == nil {
		return fmt.Errorf("mailer not initialized")
	}

	subject := "Your SupplyDesk verification code"
	if purpose == "password_reset" {
		subject = "Your SupplyDesk password reset code"
	}

	plain := fmt.Sprintf("Your one-time code is %s. It expires shortly; ignore this email if you did not request it.", code)
	html := fmt.Sprintf("<p>Your one-time code is <strong>%s</strong>.</p><p>It expires shortly; ignore this email if you did not request it.</p>", code)

	message := mail.NewSingleEmail(c.from, subject, mail.NewEmail("", toEmail), plain, html)
	return c.send(message)
}
