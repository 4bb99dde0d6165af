package config

import "time"

type SecurityConfig interface {
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionCookieName() string {
	return "storefront_sid"
}

// GetMaxSessionAge bounds how long browser-session state (token, checkout context) is kept.
func (Security) GetMaxSessionAge() time.Duration {
	return 30 * 24 * time.Hour
}
