package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar     = "API_BASE_URL"
	currencyVar       = "CURRENCY"
	requestTimeoutVar = "REQUEST_TIMEOUT"
)

type Commerce struct{}

var _ CommerceConfig = Commerce{}

// GetAPIBaseURL returns the root of the remote commerce API, without a trailing slash
// (e.g. "http://localhost:8080/api/v1").
func (Commerce) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8080/api/v1"), "/")
}

// GetCurrency is the fixed three-letter currency used for every checkout session.
func (Commerce) GetCurrency() string {
	currency := strings.ToUpper(GetEnv(currencyVar, "NPR"))
	if len(currency) != 3 {
		return "NPR"
	}
	return currency
}

func (Commerce) GetRequestTimeout() time.Duration {
	timeout, err := time.ParseDuration(GetEnv(requestTimeoutVar, "10s"))
	if err != nil || timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}
