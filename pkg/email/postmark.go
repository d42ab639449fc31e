package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkSender sends through the Postmark API with open and HTML link
// tracking enabled.
type PostmarkSender struct {
	client *postmark.Client
	cfg    Config
}

// PostmarkOption configures a PostmarkSender.
type PostmarkOption func(*postmark.Client)

// WithBaseURL points the client at another API host, e.g. a test server.
func WithBaseURL(url string) PostmarkOption {
	return func(c *postmark.Client) { c.BaseURL = url }
}

func NewPostmarkSender(cfg Config, opts ...PostmarkOption) (*PostmarkSender, error) {
	switch {
	case !cfg.UsePostmark():
		return nil, errors.Join(ErrInvalidConfig, errors.New("postmark server and account tokens are required"))
	case !validAddress(cfg.SenderEmail):
		return nil, errors.Join(ErrInvalidConfig, errors.New("sender email is invalid"))
	case !validAddress(cfg.SupportEmail):
		return nil, errors.Join(ErrInvalidConfig, errors.New("support email is invalid"))
	}

	client := postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	for _, opt := range opts {
		opt(client)
	}
	return &PostmarkSender{client: client, cfg: cfg}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.cfg.SenderEmail,
		ReplyTo:    s.cfg.SupportEmail,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
