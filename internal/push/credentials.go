package push

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/care-scheduler/internal/config"
)

const (
	messagingScope  = "https://www.googleapis.com/auth/firebase.messaging"
	defaultTokenURI = "https://oauth2.googleapis.com/token"
	assertionTTL    = time.Hour
)

var ErrCredentialsMissing = errors.New("push: service account not configured")

// ServiceAccount is the signing identity used to obtain gateway access
// tokens. Field names follow the JSON key file issued by the provider.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

func ParseServiceAccountJSON(b []byte) (ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(b, &sa); err != nil {
		return ServiceAccount{}, fmt.Errorf("push: decode service account: %w", err)
	}
	return sa, nil
}

func (sa ServiceAccount) Configured() bool {
	return sa.ProjectID != "" && sa.ClientEmail != "" && strings.TrimSpace(sa.PrivateKey) != ""
}

func (sa ServiceAccount) tokenURI() string {
	if sa.TokenURI == "" {
		return defaultTokenURI
	}
	return sa.TokenURI
}

func (sa ServiceAccount) signingKey() (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("push: parse private key: %w", err)
	}
	return key, nil
}

// SignAssertion returns the RS256 JWT exchanged for an access token. It is
// valid for one hour from now and addressed to the token endpoint.
func (sa ServiceAccount) SignAssertion(now time.Time) (string, error) {
	if !sa.Configured() {
		return "", ErrCredentialsMissing
	}
	key, err := sa.signingKey()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss":   sa.ClientEmail,
		"scope": messagingScope,
		"aud":   sa.tokenURI(),
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("push: sign assertion: %w", err)
	}
	return signed, nil
}

// ServiceAccountFromConfig prefers the key file when one is configured and
// falls back to the inline FCM_* values otherwise.
func ServiceAccountFromConfig(cfg *config.Config) (ServiceAccount, error) {
	raw, err := cfg.ReadServiceAccountFile()
	if err != nil {
		return ServiceAccount{}, err
	}
	if raw != nil {
		sa, err := ParseServiceAccountJSON(raw)
		if err != nil {
			return ServiceAccount{}, err
		}
		if sa.TokenURI == "" {
			sa.TokenURI = cfg.FCM.TokenURI
		}
		return sa, nil
	}

	return ServiceAccount{
		ProjectID:   cfg.FCM.ProjectID,
		ClientEmail: cfg.FCM.ClientEmail,
		PrivateKey:  cfg.FCM.PrivateKey,
		TokenURI:    cfg.FCM.TokenURI,
	}, nil
}
