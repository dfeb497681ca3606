package gemini

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i2y/bridle/internal/transport"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
)

// newClient creates the transport for the Generative Language API.
func newClient(apiKey string, httpClient *http.Client) *transport.Client {
	return &transport.Client{
		Provider:   Name,
		HTTPClient: httpClient,
		Header:     http.Header{"X-Goog-Api-Key": {apiKey}},
	}
}

// streamURL returns the streaming endpoint of model.
func streamURL(baseURL, model string) string {
	return fmt.Sprintf("%s/%s/models/%s:streamGenerateContent?alt=sse",
		strings.TrimRight(baseURL, "/"), apiVersion, url.PathEscape(model))
}
