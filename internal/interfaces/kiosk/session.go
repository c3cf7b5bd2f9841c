package kiosk

import (
	"strings"
	"time"
)

// Session remembers the ticket this kiosk handed out so the form stays
// hidden until the visitor resets or the session expires.
type Session struct {
	number    string
	expiresAt time.Time
	ttl       time.Duration
}

func NewSession(ttl time.Duration) *Session {
	return &Session{ttl: ttl}
}

// Remember stores number. A non-positive TTL disables the session.
func (s *Session) Remember(number string, now time.Time) {
	if s.ttl <= 0 || strings.TrimSpace(number) == "" {
		return
	}
	s.number = number
	s.expiresAt = now.Add(s.ttl)
}

// Active returns the remembered number while the session is valid.
func (s *Session) Active(now time.Time) (string, bool) {
	if s.number == "" || !now.Before(s.expiresAt) {
		return "", false
	}
	return s.number, true
}

// ExpiresAt is zero when nothing is remembered.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

func (s *Session) Clear() {
	s.number = ""
	s.expiresAt = time.Time{}
}
