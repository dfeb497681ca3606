package anthropic

import (
	"net/http"

	"github.com/i2y/bridle/internal/transport"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	messagesPath   = "/v1/messages"
)

// newClient creates the transport for the Anthropic API.
func newClient(apiKey string, httpClient *http.Client) *transport.Client {
	return &transport.Client{
		Provider:   Name,
		HTTPClient: httpClient,
		Header: http.Header{
			"X-Api-Key":         {apiKey},
			"Anthropic-Version": {apiVersion},
		},
	}
}
