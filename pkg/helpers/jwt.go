package helpers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails to decode: bad
// signature, wrong algorithm, malformed payload, expired, or a scope or
// subject that does not fit the consumer.
var ErrInvalidToken = errors.New("invalid token")

// ErrWrongScope is a valid token presented to a consumer of another scope.
// It matches ErrInvalidToken under errors.Is.
var ErrWrongScope = fmt.Errorf("%w: wrong scope", ErrInvalidToken)

// Scope restricts which operation may consume a token.
type Scope string

const (
	ScopeAccess  Scope = "access"
	ScopeRefresh Scope = "refresh"
	ScopeVerify  Scope = "verify"
	ScopeReset   Scope = "reset"
)

func (s Scope) valid() bool {
	switch s {
	case ScopeAccess, ScopeRefresh, ScopeVerify, ScopeReset:
		return true
	}
	return false
}

// Subject identifies the user a token was issued for.
type Subject struct {
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

// ScopedClaims is the decoded form of a token. The concrete type tells the
// scope; only this package can add implementations.
type ScopedClaims interface {
	Scope() Scope
	Subject() Subject
	sealed()
}

type AccessClaims struct{ Sub Subject }
type RefreshClaims struct{ Sub Subject }
type VerifyClaims struct{ Sub Subject }
type ResetClaims struct{ Sub Subject }

func (c AccessClaims) Scope() Scope      { return ScopeAccess }
func (c AccessClaims) Subject() Subject  { return c.Sub }
func (AccessClaims) sealed()             {}
func (c RefreshClaims) Scope() Scope     { return ScopeRefresh }
func (c RefreshClaims) Subject() Subject { return c.Sub }
func (RefreshClaims) sealed()            {}
func (c VerifyClaims) Scope() Scope      { return ScopeVerify }
func (c VerifyClaims) Subject() Subject  { return c.Sub }
func (VerifyClaims) sealed()             {}
func (c ResetClaims) Scope() Scope       { return ScopeReset }
func (c ResetClaims) Subject() Subject   { return c.Sub }
func (ResetClaims) sealed()              {}

// wireClaims is the JSON payload on the wire.
type wireClaims struct {
	Email string `json:"email"`
	Scope Scope  `json:"scope"`
	jwt.RegisteredClaims
}

// TokenTTLs holds the lifetime per scope. Zero verify/reset TTLs fall back
// to the access TTL.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
	Verify  time.Duration
	Reset   time.Duration
}

// JWTManager issues and decodes tokens for every scope with one secret and
// one HMAC algorithm. Scope is a claim, so every consumer must go through
// one of the Parse* methods (or check Scope itself after Decode).
type JWTManager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttls   TokenTTLs
	now    func() time.Time
}

// JWTOption customizes a JWTManager.
type JWTOption func(*JWTManager)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

// NewJWTManager builds a manager. algorithm must be HS256, HS384 or HS512.
func NewJWTManager(secret, algorithm string, ttls TokenTTLs, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if ttls.Access <= 0 || ttls.Refresh <= 0 {
		return nil, errors.New("jwt access and refresh ttl must be positive")
	}
	if ttls.Verify <= 0 {
		ttls.Verify = ttls.Access
	}
	if ttls.Reset <= 0 {
		ttls.Reset = ttls.Access
	}
	m := &JWTManager{secret: []byte(secret), method: method, ttls: ttls, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the configured lifetime for scope.
func (m *JWTManager) TTL(scope Scope) time.Duration {
	switch scope {
	case ScopeRefresh:
		return m.ttls.Refresh
	case ScopeVerify:
		return m.ttls.Verify
	case ScopeReset:
		return m.ttls.Reset
	default:
		return m.ttls.Access
	}
}

// Issue signs a token for scope. A ttl <= 0 uses the scope's default.
func (m *JWTManager) Issue(scope Scope, userID int64, email string, ttl time.Duration) (string, time.Time, error) {
	if !scope.valid() {
		return "", time.Time{}, fmt.Errorf("unknown scope %q", scope)
	}
	if ttl <= 0 {
		ttl = m.TTL(scope)
	}
	// exp is encoded in whole seconds; report exactly what was signed.
	now := m.now().Truncate(jwt.TimePrecision)
	exp := now.Add(ttl).Truncate(jwt.TimePrecision)
	claims := &wireClaims{
		Email: email,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	return s, exp, err
}

func (m *JWTManager) IssueAccess(userID int64, email string) (string, time.Time, error) {
	return m.Issue(ScopeAccess, userID, email, 0)
}

func (m *JWTManager) IssueRefresh(userID int64, email string) (string, time.Time, error) {
	return m.Issue(ScopeRefresh, userID, email, 0)
}

func (m *JWTManager) IssueVerify(userID int64, email string) (string, time.Time, error) {
	return m.Issue(ScopeVerify, userID, email, 0)
}

func (m *JWTManager) IssueReset(userID int64, email string) (string, time.Time, error) {
	return m.Issue(ScopeReset, userID, email, 0)
}

// Decode verifies signature, algorithm and expiry and returns the claims
// of whatever scope the token carries. It does not check the scope
// against any consumer.
func (m *JWTManager) Decode(tokenStr string) (ScopedClaims, error) {
	claims := &wireClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, ErrInvalidToken
	}
	sub := Subject{UserID: uid, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}
	switch claims.Scope {
	case ScopeAccess:
		return AccessClaims{Sub: sub}, nil
	case ScopeRefresh:
		return RefreshClaims{Sub: sub}, nil
	case ScopeVerify:
		return VerifyClaims{Sub: sub}, nil
	case ScopeReset:
		return ResetClaims{Sub: sub}, nil
	}
	return nil, ErrInvalidToken
}

func parseAs[T ScopedClaims](m *JWTManager, tokenStr string) (T, error) {
	var zero T
	c, err := m.Decode(tokenStr)
	if err != nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, ErrWrongScope
	}
	return typed, nil
}

func (m *JWTManager) ParseAccess(tokenStr string) (AccessClaims, error) {
	return parseAs[AccessClaims](m, tokenStr)
}

func (m *JWTManager) ParseRefresh(tokenStr string) (RefreshClaims, error) {
	return parseAs[RefreshClaims](m, tokenStr)
}

func (m *JWTManager) ParseVerify(tokenStr string) (VerifyClaims, error) {
	return parseAs[VerifyClaims](m, tokenStr)
}

func (m *JWTManager) ParseReset(tokenStr string) (ResetClaims, error) {
	return parseAs[ResetClaims](m, tokenStr)
}
