package vertex

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// defaultCredentials resolves application default credentials on first use so
// that constructing a handler performs no I/O.
type defaultCredentials struct {
	once sync.Once
	ts   oauth2.TokenSource
	err  error
}

func (d *defaultCredentials) Token() (*oauth2.Token, error) {
	d.once.Do(func() {
		ts, err := google.DefaultTokenSource(context.Background(), cloudPlatformScope)
		if err != nil {
			d.err = fmt.Errorf("finding default credentials: %w", err)
			return
		}
		d.ts = ts
	})
	if d.err != nil {
		return nil, d.err
	}
	return d.ts.Token()
}

func tokenSource(ts oauth2.TokenSource) oauth2.TokenSource {
	if ts == nil {
		ts = &defaultCredentials{}
	}
	return oauth2.ReuseTokenSource(nil, ts)
}

// authorizer sets a bearer token from ts on each request.
func authorizer(ts oauth2.TokenSource) func(*http.Request) error {
	return func(req *http.Request) error {
		tok, err := ts.Token()
		if err != nil {
			return err
		}
		tok.SetAuthHeader(req)
		return nil
	}
}
