package marketing

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/email"
	"github.com/furfolio/enginekit/pkg/metadata"
	"github.com/furfolio/enginekit/pkg/qrcode"
)

// Subsystem is the audit subsystem name of the marketing engine.
const Subsystem = "MarketingEngine"

// Mailer sends one message. *email.PostmarkSender and *email.DevSender
// satisfy it.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// Campaign is a marketing email sent to a list of owners.
type Campaign struct {
	ID      string
	Name    string
	Subject string
	Body    string // plain text, paragraphs separated by blank lines
	// BookingURL, when set, is appended to the email as a link and a QR code.
	BookingURL string
}

func (c Campaign) validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Body) == "" {
		return ErrEmptyCampaign
	}
	if c.BookingURL != "" {
		u, err := url.Parse(c.BookingURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidBookingURL
		}
	}
	return nil
}

// Owner is a campaign recipient.
type Owner struct {
	ID    string
	Name  string
	Email string
}

// CampaignResult reports what happened to each recipient.
type CampaignResult struct {
	CampaignID string
	Sent       []string // owner IDs
	Skipped    []string // owners without an email address
	Failed     []string
}

// Engine sends campaigns and records one event per step and recipient.
type Engine struct {
	*audit.Recorder
	mailer Mailer
}

// New returns an engine that delivers through mailer. A nil mailer is
// rejected with ErrNoMailer.
func New(sink audit.Sink, mailer Mailer, opts ...audit.Option) (*Engine, error) {
	if mailer == nil {
		return nil, ErrNoMailer
	}
	rec, err := audit.NewRecorder(Subsystem, sink, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{Recorder: rec, mailer: mailer}, nil
}

// SendCampaign mails c to every owner that has an email address. Owners
// without one are skipped and recorded. A failed delivery does not stop the
// campaign; it shows up in CampaignResult.Failed.
func (e *Engine) SendCampaign(ctx context.Context, c Campaign, owners []Owner) (CampaignResult, error) {
	res := CampaignResult{CampaignID: c.ID}
	campaign := metadata.String(c.ID)

	if err := c.validate(); err != nil {
		reason := "empty campaign"
		if errors.Is(err, ErrInvalidBookingURL) {
			reason = "invalid booking url"
		}
		e.RecordEvent(ctx, "CampaignRejected", metadata.Map{"campaign": campaign, "reason": metadata.String(reason)})
		return res, err
	}
	if len(owners) == 0 {
		e.RecordEvent(ctx, "CampaignRejected", metadata.Map{"campaign": campaign, "reason": metadata.String("no recipients")})
		return res, ErrNoRecipients
	}

	e.RecordEvent(ctx, "CampaignStarted", metadata.Map{
		"campaign":   campaign,
		"name":       metadata.String(c.Name),
		"recipients": metadata.Int(len(owners)),
	})

	for _, o := range owners {
		if strings.TrimSpace(o.Email) == "" {
			res.Skipped = append(res.Skipped, o.ID)
			e.RecordEvent(ctx, "RecipientSkipped", metadata.Map{
				"campaign": campaign,
				"owner":    metadata.String(o.ID),
				"reason":   metadata.String("missing email"),
			})
			continue
		}

		if err := e.send(ctx, c, o); err != nil {
			res.Failed = append(res.Failed, o.ID)
			e.RecordEvent(ctx, "CampaignDeliveryFailed", metadata.Map{
				"campaign":    campaign,
				"owner":       metadata.String(o.ID),
				"owner_email": metadata.String(o.Email),
				"error":       metadata.String(err.Error()),
			})
			continue
		}
		res.Sent = append(res.Sent, o.ID)
		e.RecordEvent(ctx, "CampaignEmailSent", metadata.Map{
			"campaign":    campaign,
			"owner":       metadata.String(o.ID),
			"owner_email": metadata.String(o.Email),
		})
	}

	e.RecordEvent(ctx, "CampaignCompleted", metadata.Map{
		"campaign": campaign,
		"sent":     metadata.Int(len(res.Sent)),
		"skipped":  metadata.Int(len(res.Skipped)),
		"failed":   metadata.Int(len(res.Failed)),
	})
	return res, nil
}

func (e *Engine) send(ctx context.Context, c Campaign, o Owner) error {
	var qr string
	if c.BookingURL != "" {
		var err error
		if qr, err = qrcode.DataURI(c.BookingURL, qrcode.WithSize(160)); err != nil {
			return err
		}
	}
	html, err := email.Render(ctx, campaignBody(o.Name, c.Body, c.BookingURL, qr))
	if err != nil {
		return err
	}
	return e.mailer.Send(ctx, email.Message{
		To:       o.Email,
		Subject:  c.Subject,
		HTMLBody: html,
		Tag:      c.ID,
	})
}
