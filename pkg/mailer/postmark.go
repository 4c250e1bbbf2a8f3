package mailer

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// Postmark delivers emails through the Postmark transactional API
type Postmark struct {
	client *postmark.Client
	from   string
}

// NewPostmark creates a Postmark-backed sender
func NewPostmark(serverToken, from string) *Postmark {
	return &Postmark{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
	}
}

// Send delivers a plain-text email
func (p *Postmark) Send(ctx context.Context, to, subject, body string) error {
	email := postmark.Email{
		From:     p.from,
		To:       to,
		Subject:  subject,
		TextBody: body,
	}

	resp, err := p.client.SendEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.ErrorCode != 0 {
		return fmt.Errorf("failed to send email: %s (code %d)", resp.Message, resp.ErrorCode)
	}
	return nil
}
