package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"autoinvoice/internal/config"
	"autoinvoice/internal/domain"
	"autoinvoice/internal/port"
)

var oauthScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// SessionClaims is the JWT payload issued after a successful Google login.
// The session id points at the server-side row holding the Gmail tokens.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService implements the Google sign-in flow and session lifecycle.
type AuthService struct {
	sessions   port.SessionRepository
	oauthCfg   *oauth2.Config
	jwtSecret  []byte
	jwtExpiry  time.Duration
	jwtIssuer  string
	sessionTTL time.Duration
}

// NewAuthService creates the auth service from configuration.
func NewAuthService(sessions port.SessionRepository, google config.GoogleConfig, jwtCfg config.JWTConfig, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		sessions:   sessions,
		oauthCfg:   newOAuthConfig(google),
		jwtSecret:  []byte(jwtCfg.Secret),
		jwtExpiry:  jwtCfg.Expiry,
		jwtIssuer:  jwtCfg.Issuer,
		sessionTTL: sessionTTL,
	}
}

func newOAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       oauthScopes,
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfig exposes the configured OAuth client for token refresh.
func (s *AuthService) OAuthConfig() *oauth2.Config {
	return s.oauthCfg
}

// LoginURL returns the Google consent page URL. Offline access is requested
// so Gmail stays reachable after the access token expires.
func (s *AuthService) LoginURL(state string) string {
	return s.oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// HandleCallback exchanges the authorization code, resolves the Google
// identity, persists a session, and returns a signed session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, *domain.Session, error) {
	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%w: exchanging authorization code: %v", domain.ErrUnauthorized, err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(s.oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return "", nil, fmt.Errorf("creating userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("fetching user info: %w", err)
	}

	session := &domain.Session{
		ID:           uuid.New(),
		UserID:       info.Id,
		Email:        info.Email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		ExpiresAt:    time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("persisting session: %w", err)
	}

	if reaped, err := s.sessions.DeleteExpired(ctx); err != nil {
		log.Printf("session reaper: %v", err)
	} else if reaped > 0 {
		log.Printf("session reaper: removed %d expired sessions", reaped)
	}

	signed, err := s.signToken(session)
	if err != nil {
		return "", nil, err
	}
	return signed, session, nil
}

func (s *AuthService) signToken(session *domain.Session) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: session.ID.String(),
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a session token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Session resolves the server-side session behind a validated token.
func (s *AuthService) Session(ctx context.Context, claims *SessionClaims) (*domain.Session, error) {
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Logout removes the server-side session.
func (s *AuthService) Logout(ctx context.Context, claims *SessionClaims) error {
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return domain.ErrUnauthorized
	}
	return s.sessions.Delete(ctx, id)
}

// ProviderToken rebuilds the oauth token for Gmail calls from a session.
func (s *AuthService) ProviderToken(session *domain.Session) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Expiry:       session.TokenExpiry,
	}
}
