// internal/domain/user/oauth.go
package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/your-org/storefront/internal/config"
)

// OAuthService completes the Google sign-in flow. The redirect always
// returns to {base URL}/auth/callback regardless of the page that
// initiated the sign-in.
type OAuthService struct {
	config      *config.Config
	userService *Service
	httpClient  *http.Client
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(cfg *config.Config, userService *Service) *OAuthService {
	return &OAuthService{
		config:      cfg,
		userService: userService,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// googleTokenResponse is the token endpoint response
type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

// googleUserInfo is the userinfo endpoint response
type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// AuthURL builds the Google consent URL for the given CSRF state
func (o *OAuthService) AuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", o.config.OAuth.GoogleClientID)
	params.Set("redirect_uri", o.config.GetOAuthCallbackURL())
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("state", state)

	return o.config.OAuth.GoogleAuthURL + "?" + params.Encode()
}

// CompleteSignIn exchanges the authorization code, resolves the identity
// and establishes a session. The identity row is created on first sign-in
// and reused, role intact, on every later one.
func (o *OAuthService) CompleteSignIn(ctx context.Context, code string) (*AuthResponse, error) {
	token, err := o.exchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := o.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("provider returned no email address")
	}

	identity, err := o.userService.UpsertIdentity(ctx, info.Email, info.Name)
	if err != nil {
		return nil, err
	}

	return o.userService.StartSessionFor(ctx, identity)
}

// Private helper methods

func (o *OAuthService) exchangeCode(ctx context.Context, code string) (*googleTokenResponse, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", o.config.OAuth.GoogleClientID)
	form.Set("client_secret", o.config.OAuth.GoogleClientSecret)
	form.Set("redirect_uri", o.config.GetOAuthCallbackURL())
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.OAuth.GoogleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var token googleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

func (o *OAuthService) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.config.OAuth.GoogleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}
