// Package billing takes storefront payments through Stripe Checkout.
package billing

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config is the Stripe account checkout sessions are opened on.
type Config struct {
	SecretKey string
	// Live accepts only live keys; otherwise only test keys are accepted.
	Live bool
	// Currency is a lower case ISO 4217 code, "mad" for the shop.
	Currency string
	// SuccessURL may carry {ORDER_NUMBER}.
	SuccessURL string
	CancelURL  string
}

const orderNumberPlaceholder = "{ORDER_NUMBER}"

// keyMode returns "live" or "test" for secret and restricted keys.
func keyMode(key string) string {
	for _, prefix := range []string{"sk_", "rk_"} {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			mode, _, _ := strings.Cut(rest, "_")
			return mode
		}
	}
	return ""
}

func (c Config) validate() error {
	var errs []error
	want := "test"
	if c.Live {
		want = "live"
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	} else if keyMode(c.SecretKey) != want {
		errs = append(errs, fmt.Errorf("secret key is not a %s key", want))
	}
	if len(c.Currency) != 3 || strings.ToLower(c.Currency) != c.Currency {
		errs = append(errs, fmt.Errorf("currency %q is not a lower case ISO code", c.Currency))
	}
	for _, u := range []struct{ name, raw string }{{"success", c.SuccessURL}, {"cancel", c.CancelURL}} {
		parsed, err := url.Parse(u.raw)
		if u.raw == "" || err != nil || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("%s URL %q is not absolute", u.name, u.raw))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("stripe config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) successURL(orderNumber string) string {
	return strings.ReplaceAll(c.SuccessURL, orderNumberPlaceholder, url.QueryEscape(orderNumber))
}
