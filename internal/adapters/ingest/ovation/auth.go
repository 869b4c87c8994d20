package ovation

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	perr "surveysync/internal/platform/errors"
)

const tokenPath = "/oauth2/access-token"

// Token is a partner access token with its absolute expiry
type Token struct {
	AccessToken string
	APIKey      string
	ExpiresAt   time.Time
}

type tokenRequest struct {
	GrantType string   `json:"grant_type"`
	Scopes    []string `json:"scopes"`
}

type tokenResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    *tokenData `json:"data"`
}

type tokenData struct {
	AccessToken string `json:"access_token"`
	APIKey      string `json:"api_key"`
	Exp         int64  `json:"exp"` // epoch seconds
}

// AccessToken performs a client credentials grant and returns the issued token
// any failure (transport, status, unsuccessful or malformed envelope) is Unauthorized
func (c *Client) AccessToken(ctx context.Context) (Token, error) {
	creds := base64.StdEncoding.EncodeToString([]byte(c.opts.ClientID + ":" + c.opts.ClientSecret))
	hdr := http.Header{}
	hdr.Set("Authorization", "Basic "+creds)

	var out tokenResponse
	err := c.post(ctx, tokenPath, hdr, tokenRequest{
		GrantType: "client_credentials",
		Scopes:    []string{"admin"},
	}, &out)
	if err != nil {
		return Token{}, perr.Wrap(err, perr.ErrorCodeUnauthorized, "ovation authentication failed")
	}

	if !out.Success {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = "response was not successful"
		}
		return Token{}, perr.Unauthorizedf("ovation authentication failed: %s", msg)
	}
	if out.Data == nil || strings.TrimSpace(out.Data.AccessToken) == "" ||
		strings.TrimSpace(out.Data.APIKey) == "" || out.Data.Exp <= 0 {
		return Token{}, perr.Unauthorizedf("ovation authentication failed: malformed token response")
	}

	tok := Token{
		AccessToken: out.Data.AccessToken,
		APIKey:      out.Data.APIKey,
		ExpiresAt:   time.Unix(out.Data.Exp, 0).UTC(),
	}
	c.log.Info().Time("expires_at", tok.ExpiresAt).Msg("ovation authentication successful")
	return tok, nil
}
