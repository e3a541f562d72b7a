package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// New returns a GitHub REST client. An empty token yields an anonymous client;
// baseURL overrides the API root.
func New(token, baseURL string) (*github.Client, error) {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(hc)

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		client.BaseURL = u
	}
	return client, nil
}
