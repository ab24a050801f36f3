package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeControl = "control"
	TokenTypeStream  = "sse"
)

var (
	ErrInvalidToken = errors.New("invalid control token")
	ErrTokenRevoked = errors.New("control token has been revoked")
)

// Service issues the tokens that guard the local control API
type Service interface {
	GenerateControlToken(installationID string) (token string, expiresAt int64, err error)
	GenerateStreamToken(installationID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (installationID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	controlTokenExpirationTime string
	streamTokenExpiration      time.Duration
	tokenAuth                  *jwtauth.JWTAuth
	revokedTokens              map[string]int64
	mu                         sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService creates the token service. streamTokenExpiration defaults to 5 minutes.
func NewJWTService(secretKey string, controlTokenExpirationTime string, streamTokenExpiration time.Duration) Service {
	if streamTokenExpiration == 0 {
		streamTokenExpiration = 5 * time.Minute
	}
	return &JWTService{
		controlTokenExpirationTime: controlTokenExpirationTime,
		streamTokenExpiration:      streamTokenExpiration,
		tokenAuth:                  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:              make(map[string]int64),
	}
}

func (j *JWTService) GenerateControlToken(installationID string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.controlTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"installation_id": installationID,
		"type":            TokenTypeControl,
		"exp":             expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// GenerateStreamToken generates a short-lived token for SSE connections,
// which cannot carry an Authorization header from a browser EventSource
func (j *JWTService) GenerateStreamToken(installationID string) (token string, expiresIn int, err error) {
	expiresIn = int(j.streamTokenExpiration.Seconds())
	expiresAt := time.Now().Add(j.streamTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"installation_id": installationID,
		"type":            TokenTypeStream,
		"exp":             expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateStreamToken validates an SSE token and returns the installation ID
func (j *JWTService) ValidateStreamToken(tokenString string) (installationID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeStream {
		return "", ErrInvalidToken
	}

	idVal, ok := token.Get("installation_id")
	if !ok {
		return "", ErrInvalidToken
	}

	installationID, ok = idVal.(string)
	if !ok {
		return "", ErrInvalidToken
	}

	return installationID, nil
}
