package accounts

import (
	"time"

	"github.com/aakritigupta/openproject/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
)

const (
	jwtIssuer   = "openproject"
	jwtAudience = "session"
	jwtLeeway   = 5 * time.Second
)

// Session identifies an authenticated user for the duration of a login.
type Session struct {
	ID       string
	Login    string
	Name     string
	Email    string
	AuthTime time.Time
}

// SessionClaims is the JWT claim set backing a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// IssueSessionToken creates a signed JWT for the user. The token id doubles
// as the session id.
func (p *AccountsPlugin) IssueSessionToken(u *User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Login,
			Issuer:    jwtIssuer,
			Audience:  jwt.ClaimStrings{jwtAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.sessionExpiration)),
		},
		Name:  u.Name,
		Email: u.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", errors.Wrap(err, 0).WithCode(codes.Internal)
	}
	return signed, nil
}

// ParseSessionToken validates a session token and returns the session it
// represents.
func (p *AccountsPlugin) ParseSessionToken(tokenString string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return p.signingKey, nil
		},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithLeeway(jwtLeeway),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Session{}, errors.Wrap(err, 0).WithCode(codes.Unauthenticated)
	}
	if !token.Valid || token.Claims == nil {
		return Session{}, errors.NewC("invalid session token", codes.Unauthenticated)
	}
	claims := token.Claims.(*SessionClaims)
	return Session{
		ID:       claims.ID,
		Login:    claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		AuthTime: claims.IssuedAt.Time,
	}, nil
}
