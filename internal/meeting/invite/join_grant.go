package invite

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/huddle.space/internal/id"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

const defaultJoinGrantTTL = 24 * time.Hour

// joinGrantSignerEnv holds raw env values before post-parse validation.
type joinGrantSignerEnv struct {
	Issuer     string `env:"HUDDLE_SPACE_JOIN_GRANT_ISSUER"`
	Audience   string `env:"HUDDLE_SPACE_JOIN_GRANT_AUDIENCE"`
	PrivateKey string `env:"HUDDLE_SPACE_JOIN_GRANT_PRIVATE_KEY"`
}

// joinGrantVerifierEnv holds raw env values before post-parse validation.
type joinGrantVerifierEnv struct {
	Issuer    string `env:"HUDDLE_SPACE_JOIN_GRANT_ISSUER"`
	Audience  string `env:"HUDDLE_SPACE_JOIN_GRANT_AUDIENCE"`
	PublicKey string `env:"HUDDLE_SPACE_JOIN_GRANT_PUBLIC_KEY"`
}

// JoinGrantSignerConfig defines how join grants are minted.
type JoinGrantSignerConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PrivateKey
	TTL      time.Duration
	Now      func() time.Time
}

// JoinGrantVerifierConfig defines how join grants are verified.
type JoinGrantVerifierConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// JoinGrantExpectation defines the expected identity for a join grant.
type JoinGrantExpectation struct {
	MeetingID    string
	InviteID     string
	InviteeEmail string
}

// JoinGrantClaims captures validated join grant claims.
type JoinGrantClaims struct {
	Issuer       string
	Audience     []string
	ExpiresAt    time.Time
	IssuedAt     time.Time
	JWTID        string
	MeetingID    string
	InviteID     string
	InviteeEmail string
}

// joinGrantClaims is the internal claims type used for JWT parsing.
type joinGrantClaims struct {
	jwt.RegisteredClaims
	MeetingID    string `json:"meeting_id"`
	InviteID     string `json:"invite_id"`
	InviteeEmail string `json:"invitee_email"`
}

// LoadJoinGrantSignerFromEnv reads join grant signing configuration.
func LoadJoinGrantSignerFromEnv(now func() time.Time) (JoinGrantSignerConfig, error) {
	var raw joinGrantSignerEnv
	if err := env.Parse(&raw); err != nil {
		return JoinGrantSignerConfig{}, fmt.Errorf("parse join grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	privateKey := strings.TrimSpace(raw.PrivateKey)
	if issuer == "" {
		return JoinGrantSignerConfig{}, fmt.Errorf("HUDDLE_SPACE_JOIN_GRANT_ISSUER is required")
	}
	if audience == "" {
		return JoinGrantSignerConfig{}, fmt.Errorf("HUDDLE_SPACE_JOIN_GRANT_AUDIENCE is required")
	}
	if privateKey == "" {
		return JoinGrantSignerConfig{}, fmt.Errorf("HUDDLE_SPACE_JOIN_GRANT_PRIVATE_KEY is required")
	}
	keyBytes, err := decodeBase64(privateKey)
	if err != nil {
		return JoinGrantSignerConfig{}, fmt.Errorf("decode join grant private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return JoinGrantSignerConfig{}, fmt.Errorf("join grant private key must be %d bytes", ed25519.PrivateKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return JoinGrantSignerConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PrivateKey(keyBytes),
		TTL:      defaultJoinGrantTTL,
		Now:      now,
	}, nil
}

// LoadJoinGrantVerifierFromEnv reads join grant verification configuration.
func LoadJoinGrantVerifierFromEnv(now func() time.Time) (JoinGrantVerifierConfig, error) {
	var raw joinGrantVerifierEnv
	if err := env.Parse(&raw); err != nil {
		return JoinGrantVerifierConfig{}, fmt.Errorf("parse join grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return JoinGrantVerifierConfig{}, fmt.Errorf("HUDDLE_SPACE_JOIN_GRANT_ISSUER is required")
	}
	if audience == "" {
		return JoinGrantVerifierConfig{}, fmt.Errorf("HUDDLE_SPACE_JOIN_GRANT_AUDIENCE is required")
	}
	if publicKey == "" {
		return JoinGrantVerifierConfig{}, fmt.Errorf("HUDDLE_SPACE_JOIN_GRANT_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return JoinGrantVerifierConfig{}, fmt.Errorf("decode join grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return JoinGrantVerifierConfig{}, fmt.Errorf("join grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return JoinGrantVerifierConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// IssueJoinGrant mints a signed join grant for an invitation. The grant binds
// the meeting, the invitation, and the invitee so it cannot be replayed for a
// different seat.
func IssueJoinGrant(invitation Invitation, cfg JoinGrantSignerConfig) (string, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultJoinGrantTTL
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PrivateKeySize {
		return "", errors.New("join grant signer is not configured")
	}

	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}

	now := cfg.Now().UTC()
	claims := joinGrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        jti,
		},
		MeetingID:    invitation.MeetingID,
		InviteID:     invitation.ID,
		InviteeEmail: invitation.InviteeEmail,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign join grant: %w", err)
	}
	return signed, nil
}

// ValidateJoinGrant verifies a join grant token and validates expected claims.
func ValidateJoinGrant(grant string, expected JoinGrantExpectation, cfg JoinGrantVerifierConfig) (JoinGrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return JoinGrantClaims{}, apperrors.New(apperrors.CodeInviteJoinGrantInvalid, "join grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return JoinGrantClaims{}, errors.New("join grant verifier is not configured")
	}

	var parsed joinGrantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return JoinGrantClaims{}, apperrors.Wrap(apperrors.CodeInviteJoinGrantInvalid, "parse join grant", err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return JoinGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteJoinGrantMismatch,
			"join grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return JoinGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteJoinGrantMismatch,
			"join grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}

	if parsed.ID == "" {
		return JoinGrantClaims{}, apperrors.New(apperrors.CodeInviteJoinGrantInvalid, "join grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return JoinGrantClaims{}, apperrors.New(apperrors.CodeInviteJoinGrantInvalid, "join grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return JoinGrantClaims{}, apperrors.New(apperrors.CodeInviteJoinGrantExpired, "join grant is expired")
	}

	if strings.TrimSpace(parsed.MeetingID) == "" || parsed.MeetingID != expected.MeetingID {
		return JoinGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteJoinGrantMismatch,
			"join grant meeting mismatch",
			map[string]string{"Field": "meeting_id"},
		)
	}
	if strings.TrimSpace(parsed.InviteID) == "" || parsed.InviteID != expected.InviteID {
		return JoinGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteJoinGrantMismatch,
			"join grant invite mismatch",
			map[string]string{"Field": "invite_id"},
		)
	}
	if strings.TrimSpace(parsed.InviteeEmail) == "" || !strings.EqualFold(parsed.InviteeEmail, expected.InviteeEmail) {
		return JoinGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteJoinGrantMismatch,
			"join grant invitee mismatch",
			map[string]string{"Field": "invitee_email"},
		)
	}

	claims := JoinGrantClaims{
		Issuer:       parsed.Issuer,
		Audience:     parsed.Audience,
		ExpiresAt:    exp,
		JWTID:        parsed.ID,
		MeetingID:    parsed.MeetingID,
		InviteID:     parsed.InviteID,
		InviteeEmail: strings.ToLower(parsed.InviteeEmail),
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

func audienceContains(audience jwt.ClaimStrings, want string) bool {
	for _, value := range audience {
		if value == want {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.RawStdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
