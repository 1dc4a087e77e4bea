package group

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient implements Client against the provider's group-management
// REST API, authenticated with a service token.
type HTTPClient struct {
	apiBaseURL string
	apiToken   string
	httpClient *http.Client
}

func NewHTTPClient(apiBaseURL, apiToken string) *HTTPClient {
	return &HTTPClient{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) memberURL(groupID, identityID string) string {
	return fmt.Sprintf("%s/groups/%s/members/%s", c.apiBaseURL, groupID, identityID)
}

func (c *HTTPClient) IsMember(ctx context.Context, groupID, identityID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.memberURL(groupID, identityID), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("group: member lookup returned %d", resp.StatusCode)
	}
}

func (c *HTTPClient) AddMember(ctx context.Context, groupID, identityID, accessToken string) error {
	body, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return fmt.Errorf("group: encode add request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.memberURL(groupID, identityID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("group: add member returned %d", resp.StatusCode)
	}
	return nil
}
