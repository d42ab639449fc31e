package email

// Config selects and configures the outbound mail sender. Without Postmark
// tokens the engines fall back to DevSender writing to DevDir.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"hello@furfolio.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@furfolio.app"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:".mail"`
}

// UsePostmark reports whether both Postmark tokens are present.
func (c Config) UsePostmark() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
