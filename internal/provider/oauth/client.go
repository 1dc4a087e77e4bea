package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"authsync-service/internal/identity"
	"authsync-service/internal/provider"

	"golang.org/x/oauth2"
)

// Client performs the code exchange and profile resolution against one
// configured identity provider.
type Client struct {
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	apiBaseURL  string
	cdnBaseURL  string
}

func New(
	clientID string,
	clientSecret string,
	redirectURL string,
	tokenURL string,
	apiBaseURL string,
	cdnBaseURL string,
) (*Client, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("oauth client config missing required fields")
	}
	if tokenURL == "" || apiBaseURL == "" {
		return nil, errors.New("oauth client config missing provider endpoints")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
			// Client credentials travel in the form body, which is what
			// the provider's token endpoint expects.
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"identify", "guilds.join"},
	}

	return &Client{
		oauthConfig: oauthCfg,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		apiBaseURL:  strings.TrimRight(apiBaseURL, "/"),
		cdnBaseURL:  strings.TrimRight(cdnBaseURL, "/"),
	}, nil
}

func (c *Client) Exchange(ctx context.Context, code string) (*identity.AccessGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in response", provider.ErrExchangeFailed)
	}

	return &identity.AccessGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
	}, nil
}

func (c *Client) ResolveIdentity(ctx context.Context, grant *identity.AccessGrant) (*identity.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrResolutionFailed, err)
	}
	req.Header.Set("Authorization", grant.TokenType+" "+grant.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: profile endpoint returned %d", provider.ErrResolutionFailed, resp.StatusCode)
	}

	var body struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		Discriminator string `json:"discriminator"`
		Avatar        string `json:"avatar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", provider.ErrResolutionFailed, err)
	}
	if body.ID == "" {
		return nil, fmt.Errorf("%w: profile missing identity id", provider.ErrResolutionFailed)
	}

	return &identity.Profile{
		IdentityID:  body.ID,
		DisplayName: displayName(body.Username, body.Discriminator),
		AvatarRef:   c.avatarRef(body.ID, body.Avatar),
	}, nil
}

// displayName folds the legacy discriminator into the username. Providers
// that migrated off discriminators report "0" or omit the field.
func displayName(username, discriminator string) string {
	if discriminator == "" || discriminator == "0" {
		return username
	}
	return username + "#" + discriminator
}

func (c *Client) avatarRef(identityID, avatarHash string) string {
	if avatarHash == "" || c.cdnBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png?size=4096", c.cdnBaseURL, identityID, avatarHash)
}
