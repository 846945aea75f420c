// Package phone validates and normalises customer phone numbers.
package phone

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ttacon/libphonenumber"
)

const DefaultRegion = "BR"

// Normalize parses raw input for the given region and returns it in E.164.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("phone number is empty")
	}
	if region == "" {
		region = DefaultRegion
	}
	num, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("parsing phone number: %w", err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("phone number %q is not valid for region %s", raw, region)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// Display renders a stored number in the national format of its region.
func Display(raw, region string) string {
	if region == "" {
		region = DefaultRegion
	}
	num, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.NATIONAL)
}

// WhatsAppLink builds a click-to-chat link with a pre-filled message.
func WhatsAppLink(raw, region, message string) (string, error) {
	e164, err := Normalize(raw, region)
	if err != nil {
		return "", err
	}
	digits := strings.TrimPrefix(e164, "+")
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text, nil
}
