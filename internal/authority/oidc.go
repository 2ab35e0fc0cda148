package authority

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier checks ID tokens issued to this application.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(provider *oidc.Provider, clientID string) *OIDCVerifier {
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}
}

func (v *OIDCVerifier) VerifyCredential(ctx context.Context, credential string) (Identity, error) {
	token, err := v.verifier.Verify(ctx, credential)
	if err != nil {
		return Identity{}, err
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := token.Claims(&claims); err != nil {
		return Identity{}, err
	}

	return Identity{
		Subject: token.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Expiry:  token.Expiry,
	}, nil
}
