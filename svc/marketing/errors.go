package marketing

import "errors"

var (
	ErrEmptyCampaign = errors.New("marketing: campaign name, subject and body are required")
	ErrNoRecipients  = errors.New("marketing: campaign has no recipients")
	ErrNoMailer      = errors.New("marketing: mailer is required")

	ErrInvalidBookingURL = errors.New("marketing: booking url must be an absolute http or https url")
)
