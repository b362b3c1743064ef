package service

import (
	"errors"
	"strings"
	"time"

	"go-pos-ledger/pkg/jwt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidAccessCode       = errors.New("invalid access code")
	ErrAccessCodeFormat        = errors.New("access code must be 4 to 12 characters")
	ErrTokenGenerationFailed   = errors.New("failed to generate token")
	ErrAccessCodeHashingFailed = errors.New("failed to hash access code")
)

type AccessService interface {
	Login(code string) (*LoginResponse, error)
	ChangeAccessCode(oldCode, newCode string) error
	ResetAccessCode(newCode string) error
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type accessService struct {
	ledger LedgerService
	tokens *jwt.Manager
	cost   int
}

func NewAccessService(ledger LedgerService, tokens *jwt.Manager) AccessService {
	return &accessService{ledger: ledger, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *accessService) Login(code string) (*LoginResponse, error) {
	if !s.verify(code) {
		return nil, ErrInvalidAccessCode
	}

	token, expires, err := s.tokens.GenerateToken("admin", jwt.RoleAdmin)
	if err != nil {
		log.Error().Err(err).Msg("sign admin token")
		return nil, ErrTokenGenerationFailed
	}
	return &LoginResponse{Token: token, Role: jwt.RoleAdmin, ExpiresAt: expires}, nil
}

func (s *accessService) ChangeAccessCode(oldCode, newCode string) error {
	if !s.verify(oldCode) {
		return ErrInvalidAccessCode
	}
	return s.ResetAccessCode(newCode)
}

// ResetAccessCode stores a new code without checking the current one.
func (s *accessService) ResetAccessCode(newCode string) error {
	newCode = strings.TrimSpace(newCode)
	if len(newCode) < 4 || len(newCode) > 12 {
		return ErrAccessCodeFormat
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newCode), s.cost)
	if err != nil {
		return ErrAccessCodeHashingFailed
	}
	s.ledger.SetAccessCode(string(hash))
	return nil
}

// verify compares code with the stored value. A plaintext value, as written by older
// clients and the default seed, is compared verbatim and replaced by its hash on success.
func (s *accessService) verify(code string) bool {
	stored := s.ledger.AccessCode()
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(code)) == nil
	}
	if stored == "" || code != stored {
		return false
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost); err == nil {
		s.ledger.SetAccessCode(string(hash))
	} else {
		log.Warn().Err(err).Msg("rehash legacy access code")
	}
	return true
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
