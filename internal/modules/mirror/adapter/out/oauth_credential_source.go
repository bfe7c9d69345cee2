package out

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"

	mirrorout "tally/internal/modules/mirror/port/out"
)

// OAuthCredentialSource reads a stored oauth2 token and yields an HTTP
// client that attaches it to every request. Identity itself is
// delegated to the external account system; this only carries the
// credential it already issued. An empty path means the document
// service needs no auth (tests, self-hosted mirrors).
type OAuthCredentialSource struct {
	tokenPath string
}

func NewOAuthCredentialSource(tokenPath string) mirrorout.CredentialSource {
	return &OAuthCredentialSource{tokenPath: tokenPath}
}

func (s *OAuthCredentialSource) Client(ctx context.Context) (*http.Client, error) {
	if s.tokenPath == "" {
		return http.DefaultClient, nil
	}
	raw, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	token := oauth2.Token{}
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode credential file: %w", err)
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("credential expired and not refreshable")
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&token)), nil
}
