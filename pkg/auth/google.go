package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/localhands/pkg/errs"
)

// GoogleIdentity is the subset of a verified Google ID token the service
// consumes.
type GoogleIdentity struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Audience   string `json:"aud"`
}

// GoogleVerifier validates a federated identity assertion. The production
// implementation calls Google's tokeninfo endpoint; tests substitute a fake.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type googleVerifier struct {
	clientID   string
	httpClient *http.Client
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	u := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google token verification failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid google token: %w", errs.ErrUnauthenticated)
	}

	var identity GoogleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("invalid google token payload: %w", errs.ErrUnauthenticated)
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("google token missing email: %w", errs.ErrUnauthenticated)
	}
	if v.clientID != "" && identity.Audience != v.clientID {
		return nil, fmt.Errorf("google token audience mismatch: %w", errs.ErrUnauthenticated)
	}
	return &identity, nil
}
