// Package clashapi checks player tags against the Clash of Clans API.
package clashapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the public Clash of Clans API.
const DefaultBaseURL = "https://api.clashofclans.com/v1"

// ErrInvalidTag is returned for tags that cannot be a player tag.
var ErrInvalidTag = errors.New("invalid player tag")

// Player tags use a fixed alphabet.
var tagPattern = regexp.MustCompile(`^[0289PYLQGRJCUV]{3,12}$`)

// NormalizeTag strips the leading '#' and whitespace, upper-cases the tag,
// and reports whether the result is a well-formed player tag.
func NormalizeTag(tag string) (string, bool) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	tag = strings.TrimPrefix(tag, "#")
	// The letter O is commonly typed for zero.
	tag = strings.ReplaceAll(tag, "O", "0")
	return tag, tagPattern.MatchString(tag)
}

// Client implements domain.PlayerDirectory.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// PlayerExists reports whether the API knows the player.
func (c *Client) PlayerExists(ctx context.Context, tag string) (bool, error) {
	normalized, ok := NormalizeTag(tag)
	if !ok {
		return false, ErrInvalidTag
	}

	endpoint := c.baseURL + "/players/" + url.PathEscape("#"+normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach clash api: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("clash api returned status %d", resp.StatusCode)
	}
}
