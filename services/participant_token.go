package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// participantTokenTTL bounds how long a participant can sit on a poll page
// before being handed a fresh token.
const participantTokenTTL = 24 * time.Hour

// ParticipantClaims bind a participant's session to one poll instance. The
// session id only needs to be unique, not secret.
type ParticipantClaims struct {
	SessionID string `json:"session_id"`
	PollCode  string `json:"poll_code"`
	GroupID   uint   `json:"group_id"`
	jwt.RegisteredClaims
}

type ParticipantTokenService struct {
	secret []byte
}

func NewParticipantTokenService(secret string) *ParticipantTokenService {
	return &ParticipantTokenService{secret: []byte(secret)}
}

// Issue mints a signed token binding a fresh session id to the given poll.
func (s *ParticipantTokenService) Issue(groupID uint, pollCode string) (string, error) {
	now := time.Now()
	claims := ParticipantClaims{
		SessionID: newSessionID(),
		PollCode:  pollCode,
		GroupID:   groupID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(participantTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry. A missing, expired or tampered token is
// a normal outcome for participants, so it reports false instead of an error.
func (s *ParticipantTokenService) Verify(token string) (*ParticipantClaims, bool) {
	if token == "" {
		return nil, false
	}

	claims := &ParticipantClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}

	return claims, true
}

// newSessionID returns a time-prefixed random identifier. The prefix keeps
// ids roughly sortable by issue time; the suffix makes collisions irrelevant.
func newSessionID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
