package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Pbash-js/Pai/internal/config"
)

// OAuth performs the Notion public-integration authorization flow.
type OAuth struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

func NewOAuth(cfg config.NotionConfig) *OAuth {
	return &OAuth{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// AuthorizeURL builds the consent-page URL carrying the signed state token.
func (o *OAuth) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", o.clientID)
	q.Set("response_type", "code")
	q.Set("owner", "user")
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return o.baseURL + "/v1/oauth/authorize?" + q.Encode()
}

// Token is the result of a successful code exchange.
type Token struct {
	AccessToken   string `json:"access_token"`
	WorkspaceName string `json:"workspace_name"`
	WorkspaceID   string `json:"workspace_id"`
	BotID         string `json:"bot_id"`
}

// ExchangeCode trades an authorization code for an access token.
func (o *OAuth) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": redirectURI,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/oauth/token", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(o.clientID, o.clientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("notion oauth %s: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("notion oauth status %d", resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &token, nil
}
