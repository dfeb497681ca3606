package vertex

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultRegion = "us-east5"

	// vertexAnthropicVersion is sent in the body in place of a model field.
	vertexAnthropicVersion = "vertex-2023-10-16"
)

// baseURL returns the regional endpoint. The global region has no prefix.
func baseURL(region string) string {
	if region == "global" {
		return "https://aiplatform.googleapis.com"
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com", region)
}

// modelURL addresses a publisher model method.
func modelURL(base, project, region, publisher, model, method string) string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/%s/models/%s:%s",
		strings.TrimRight(base, "/"),
		url.PathEscape(project), url.PathEscape(region), publisher, url.PathEscape(model), method)
}

func isGemini(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}
