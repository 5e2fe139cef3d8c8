package validation

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// MaxURLLength bounds accepted feed URLs.
const MaxURLLength = 2048

// FeedURL validates a subscription feed URL and returns it trimmed. Local
// and private hosts are allowed since self-hosted RSS proxies are common.
func FeedURL(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", ErrMissingURL
	}
	if len(input) > MaxURLLength {
		return "", errors.Errorf("URL too long (max %d characters)", MaxURLLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", errors.New("URL contains invalid characters")
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", errors.Wrap(err, "invalid URL format")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", errors.New("URL must use http or https protocol")
	}
	if parsedURL.Host == "" {
		return "", errors.New("URL must have a valid hostname")
	}

	return input, nil
}
