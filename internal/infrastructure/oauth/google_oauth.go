package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tourstaff-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// FirebaseMessagingScope authorizes FCM HTTP v1 sends
const FirebaseMessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// Scopes requested for the shared Google refresh token
var Scopes = []string{
	sheets.SpreadsheetsScope,
	FirebaseMessagingScope,
}

// GoogleOAuth handles OAuth authentication for Sheets and FCM
type GoogleOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGoogleOAuth creates a new Google OAuth handler
func NewGoogleOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *GoogleOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}

	return &GoogleOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// Configured reports whether a refresh token is available
func (o *GoogleOAuth) Configured() bool {
	return o.config.ClientID != "" && o.refreshToken != ""
}

// GetTokenSource returns a token source shared by the Sheets and FCM clients
func (o *GoogleOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return oauth2.ReuseTokenSource(nil, o.config.TokenSource(ctx, token))
}

// WithRedirectURL sets the callback used by the interactive token flow
func (o *GoogleOAuth) WithRedirectURL(url string) *GoogleOAuth {
	o.config.RedirectURL = url
	return o
}

// GenerateAuthURL generates a URL for the user to authorize the application
func (o *GoogleOAuth) GenerateAuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token
func (o *GoogleOAuth) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	o.logger.Info("Refresh token obtained", "expiry", token.Expiry)

	return token, nil
}

// TokenToJSON converts a token to JSON
func (o *GoogleOAuth) TokenToJSON(token *oauth2.Token) (string, error) {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
