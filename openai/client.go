package openai

import (
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/i2y/bridle/internal/transport"
	"github.com/i2y/bridle/provider"
)

// newClient creates the SDK client. SDK retries are disabled; the handler's
// retry policy governs the initiating request.
func newClient(opts provider.Options) *openai.Client {
	reqOpts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return openai.NewClient(reqOpts...)
}

// convertError maps SDK errors to provider.APIError so the retry policy can
// classify them. Other errors pass through.
func convertError(err error) error {
	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		return err
	}

	apiErr := &provider.APIError{
		Provider:   Name,
		StatusCode: sdkErr.StatusCode,
		Type:       sdkErr.Type,
		Message:    sdkErr.Message,
		Cause:      err,
	}
	if sdkErr.Response != nil {
		apiErr.RequestID = transport.RequestID(sdkErr.Response.Header)
		if d, ok := transport.RetryAfter(sdkErr.Response.Header); ok {
			apiErr.RetryAfterDelay = d
		}
	}
	return apiErr
}
