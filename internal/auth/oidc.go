package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pitetris/backend/internal/response"
	"github.com/pitetris/backend/internal/session"
	"github.com/pitetris/backend/internal/user"
)

// UserUpserter records federated principals on login.
type UserUpserter interface {
	UpsertFromLogin(ctx context.Context, id, email string, firstName, lastName, profileImageURL *string) (*user.User, error)
}

// OIDCStrategy authenticates through an OpenID Connect provider using the
// authorization-code flow. ID tokens are verified against the provider's
// JWKS; verified claims are kept in the session.
type OIDCStrategy struct {
	sessions *session.Manager
	users    UserUpserter

	clientID     string
	clientSecret string
	redirectURL  string

	authorizeEndpoint string
	tokenEndpoint     string
	issuer            string

	jwks keyfunc.Keyfunc
	hc   *http.Client
}

type oidcDiscovery struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// NewOIDCStrategy discovers the provider's endpoints and starts JWKS
// refreshing. Fails fast on misconfiguration; the process should not come up
// half-authenticated.
func NewOIDCStrategy(ctx context.Context, issuer, clientID, clientSecret, redirectURL string, sessions *session.Manager, users UserUpserter) (*OIDCStrategy, error) {
	if issuer == "" || clientID == "" || redirectURL == "" {
		return nil, errors.New("oidc: issuer, client id and redirect url are required")
	}

	hc := &http.Client{Timeout: 10 * time.Second}
	disc, err := discover(ctx, hc, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	jwks, err := keyfunc.NewDefault([]string{disc.JWKSURI})
	if err != nil {
		return nil, fmt.Errorf("oidc jwks: %w", err)
	}

	return &OIDCStrategy{
		sessions:          sessions,
		users:             users,
		clientID:          clientID,
		clientSecret:      clientSecret,
		redirectURL:       redirectURL,
		authorizeEndpoint: disc.AuthorizationEndpoint,
		tokenEndpoint:     disc.TokenEndpoint,
		issuer:            disc.Issuer,
		jwks:              jwks,
		hc:                hc,
	}, nil
}

func discover(ctx context.Context, hc *http.Client, issuer string) (*oidcDiscovery, error) {
	wellKnown := strings.TrimRight(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned %d", resp.StatusCode)
	}
	disc := &oidcDiscovery{}
	if err := json.NewDecoder(resp.Body).Decode(disc); err != nil {
		return nil, err
	}
	if disc.AuthorizationEndpoint == "" || disc.TokenEndpoint == "" || disc.JWKSURI == "" {
		return nil, errors.New("discovery document incomplete")
	}
	return disc, nil
}

// Setup mounts the federated login and callback routes.
func (s *OIDCStrategy) Setup(r chi.Router) {
	r.Get("/api/login", s.handleLogin)
	r.Get("/api/callback", s.handleCallback)
}

// IsAuthenticated gates routes on a live session principal.
func (s *OIDCStrategy) IsAuthenticated(next http.Handler) http.Handler {
	return requireSession(s.sessions)(next)
}

// handleLogin stores a one-shot state token in the session and redirects the
// browser to the provider's authorization endpoint.
func (s *OIDCStrategy) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := randomToken()

	sid, data, err := s.sessions.Load(r)
	if err != nil {
		sid, data = "", &session.Data{}
	}
	data.OAuthState = state
	if _, err := s.sessions.Save(r.Context(), w, sid, data); err != nil {
		response.InternalError(w)
		return
	}

	q := url.Values{
		"response_type": {"code"},
		"client_id":     {s.clientID},
		"redirect_uri":  {s.redirectURL},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	http.Redirect(w, r, s.authorizeEndpoint+"?"+q.Encode(), http.StatusFound)
}

// handleCallback exchanges the authorization code, verifies the ID token and
// writes the claims into the session.
func (s *OIDCStrategy) handleCallback(w http.ResponseWriter, r *http.Request) {
	sid, data, err := s.sessions.Load(r)
	if err != nil || data.OAuthState == "" || data.OAuthState != r.URL.Query().Get("state") {
		response.Unauthorized(w, "login state mismatch")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		response.Unauthorized(w, "missing authorization code")
		return
	}

	idToken, err := s.exchangeCode(r.Context(), code)
	if err != nil {
		response.Unauthorized(w, "code exchange failed")
		return
	}

	claims, err := s.verifyIDToken(idToken)
	if err != nil {
		response.Unauthorized(w, "invalid identity token")
		return
	}

	if _, err := s.users.UpsertFromLogin(r.Context(), claims.Sub, claims.Email,
		optional(claims.FirstName), optional(claims.LastName), optional(claims.ProfileImageURL)); err != nil {
		response.InternalError(w)
		return
	}

	data.OAuthState = ""
	data.OIDCClaims = claims
	if _, err := s.sessions.Save(r.Context(), w, sid, data); err != nil {
		response.InternalError(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *OIDCStrategy) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {s.redirectURL},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.IDToken == "" {
		return "", errors.New("token response missing id_token")
	}
	return body.IDToken, nil
}

// verifyIDToken checks the token signature against the provider JWKS and
// requires a subject claim; a principal without sub is not a principal.
func (s *OIDCStrategy) verifyIDToken(raw string) (*session.OIDCClaims, error) {
	token, err := jwt.Parse(raw, s.jwks.Keyfunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims shape")
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, errors.New("id token missing sub")
	}

	claims := &session.OIDCClaims{Sub: sub}
	claims.Email, _ = mc["email"].(string)
	claims.FirstName, _ = mc["given_name"].(string)
	claims.LastName, _ = mc["family_name"].(string)
	claims.ProfileImageURL, _ = mc["picture"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Unix()
	}
	return claims, nil
}

func randomToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
