package jwt

import (
	"fmt"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/fieldlane/fieldlane-auth/internal/domain"
)

// SessionClaims carry the identity fields embedded in a session token.
type SessionClaims struct {
	UserID    int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Phone     string `json:"phone"`
}

// Generator signs and validates session tokens with a process-wide secret.
type Generator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewGenerator constructs a token generator.
func NewGenerator(secret []byte, issuer string, ttl time.Duration) *Generator {
	return &Generator{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateSessionToken produces a signed JWT for the user. CompanyID falls
// back to 0 when the user has no company reference.
func (g *Generator) GenerateSessionToken(user domain.User) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: g.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := gojwt.Claims{
		Subject:   fmt.Sprintf("%d", user.ID),
		Issuer:    g.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(g.ttl)),
		NotBefore: gojwt.NewNumericDate(now),
	}
	custom := SessionClaims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Phone:     user.Phone,
	}

	token, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return token, nil
}

// ValidateSessionToken ensures the token is valid and returns its claims.
func (g *Generator) ValidateSessionToken(token string) (*gojwt.Claims, *SessionClaims, error) {
	parsed, err := gojwt.ParseSigned(token, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return nil, nil, fmt.Errorf("parse token: %w", err)
	}

	var std gojwt.Claims
	var custom SessionClaims
	if err := parsed.Claims(g.secret, &std, &custom); err != nil {
		return nil, nil, fmt.Errorf("verify token: %w", err)
	}

	if err := std.Validate(gojwt.Expected{Issuer: g.issuer, Time: time.Now().UTC()}); err != nil {
		return nil, nil, fmt.Errorf("validate claims: %w", err)
	}

	return &std, &custom, nil
}

// TTL reports the configured token lifetime.
func (g *Generator) TTL() time.Duration {
	return g.ttl
}
