package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/tradesync/config"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = strings.TrimSpace(ip) } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04 MST") }
}

func newData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{Type: typ, Name: name, Email: email}
	if cfg != nil {
		d.AppName = cfg.AppName
		d.AppURL = cfg.AppURL
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// NewWelcomeData builds the payload for the post-registration email.
func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(newData(cfg, Welcome, name, email, opts...))
}

// NewLoginNotificationData builds the payload for the sign-in notice.
func NewLoginNotificationData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(newData(cfg, LoginNotification, name, email, opts...))
}
