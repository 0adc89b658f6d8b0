package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/fruitbid/server/internal/crypto"
	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/limiter"
	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/otp"
	"github.com/fruitbid/server/internal/repository"
)

var (
	mobileRe = regexp.MustCompile(`^\+91\d{10}$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AdminSubject is the JWT subject used for administrator sessions.
const AdminSubject = "admin"

// SessionClaims are the JWT claims issued on login. Role is set to "admin"
// for administrator sessions and empty for bidders.
type SessionClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ChallengeReceipt reports the outcome of issuing an OTP challenge.
// When delivery degrades (email identifier, provider failure) the code is
// handed back for in-app display instead of failing the request.
type ChallengeReceipt struct {
	Delivered bool
	Code      string // set only when Delivered is false
}

// AuthService defines registration, OTP verification, and login operations.
type AuthService interface {
	// RequestChallenge validates the identifier, throttles repeats, issues a
	// fresh 5-minute challenge, and attempts delivery.
	RequestChallenge(ctx context.Context, identifier string, kind model.ContactKind, address string) (ChallengeReceipt, error)
	// VerifyAndRegister checks the submitted code against the newest
	// challenge and creates the verified user on success.
	VerifyAndRegister(ctx context.Context, identifier, code string) (*model.User, error)
	// Login authenticates a registered identifier and issues a session token.
	Login(ctx context.Context, identifier string) (model.Tokens, *model.User, error)
	// AdminLogin checks the admin password and issues an admin token.
	AdminLogin(ctx context.Context, password string) (model.Tokens, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	otps      repository.OTPRepository
	lim       limiter.Limiter
	sender    otp.Sender
	signKey   []byte
	accessTTL time.Duration
	adminSalt []byte
	adminHash []byte
	now       func() time.Time
	log       *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies. The
// admin hash is derived once from the environment-configured secret.
func NewAuthService(
	users repository.UserRepository,
	otps repository.OTPRepository,
	lim limiter.Limiter,
	sender otp.Sender,
	signKey []byte,
	accessTTL time.Duration,
	adminSecret string,
	log *zap.Logger,
) (*AuthServiceImpl, error) {
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return nil, err
	}
	return &AuthServiceImpl{
		users:     users,
		otps:      otps,
		lim:       lim,
		sender:    sender,
		signKey:   signKey,
		accessTTL: accessTTL,
		adminSalt: salt,
		adminHash: pkgcrypto.HashSecret([]byte(adminSecret), salt),
		now:       time.Now,
		log:       log,
	}, nil
}

func validIdentifier(identifier string, kind model.ContactKind) bool {
	switch kind {
	case model.ContactMobile:
		return mobileRe.MatchString(identifier)
	case model.ContactEmail:
		return emailRe.MatchString(identifier)
	default:
		return false
	}
}

// RequestChallenge issues a new OTP challenge for an unregistered identifier.
func (s *AuthServiceImpl) RequestChallenge(ctx context.Context, identifier string, kind model.ContactKind, address string) (ChallengeReceipt, error) {
	if !validIdentifier(identifier, kind) {
		return ChallengeReceipt{}, errors.New("validation: invalid mobile/email format")
	}
	if address == "" {
		return ChallengeReceipt{}, errors.New("validation: empty address")
	}

	if _, err := s.users.GetByIdentifier(ctx, identifier); err == nil {
		return ChallengeReceipt{}, errs.ErrAlreadyRegistered
	} else if !errors.Is(err, errs.ErrNotFound) {
		return ChallengeReceipt{}, err
	}

	allowed, _, err := s.lim.Reserve(ctx, identifier)
	if err != nil {
		return ChallengeReceipt{}, err
	}
	if !allowed {
		return ChallengeReceipt{}, errs.ErrRateLimited
	}

	code, err := otp.NewCode()
	if err != nil {
		return ChallengeReceipt{}, err
	}
	ch := &model.OTPChallenge{
		Identifier: identifier,
		Code:       code,
		Address:    address,
		ExpiresAt:  s.now().Add(otp.Validity),
	}
	if err := s.otps.Insert(ctx, ch); err != nil {
		return ChallengeReceipt{}, err
	}

	if err := s.sender.Send(ctx, identifier, kind, code); err != nil {
		// Degraded delivery falls back to in-app display, never a failure.
		s.log.Warn("otp delivery degraded", zap.String("identifier", identifier), zap.Error(err))
		return ChallengeReceipt{Delivered: false, Code: code}, nil
	}
	return ChallengeReceipt{Delivered: true}, nil
}

// VerifyAndRegister checks the newest challenge for the identifier and, on
// match before expiry, creates the verified user with the address captured
// at registration time.
func (s *AuthServiceImpl) VerifyAndRegister(ctx context.Context, identifier, code string) (*model.User, error) {
	if identifier == "" || code == "" {
		return nil, errors.New("validation: empty identifier/code")
	}
	ch, err := s.otps.Latest(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if s.now().After(ch.ExpiresAt) {
		return nil, errs.ErrChallengeExpired
	}
	if code != ch.Code {
		return nil, errs.ErrChallengeMismatch
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:         uid,
		Identifier: identifier,
		Address:    ch.Address,
		Verified:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates a registered identifier.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier string) (model.Tokens, *model.User, error) {
	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Tokens{}, nil, errs.ErrUnauthorized
		}
		return model.Tokens{}, nil, err
	}
	tok, err := s.issueToken(u.ID.String(), "")
	if err != nil {
		return model.Tokens{}, nil, err
	}
	return tok, u, nil
}

// AdminLogin verifies the admin password against the startup-derived hash.
func (s *AuthServiceImpl) AdminLogin(ctx context.Context, password string) (model.Tokens, error) {
	if !pkgcrypto.VerifySecret([]byte(password), s.adminSalt, s.adminHash) {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	return s.issueToken(AdminSubject, AdminSubject)
}

// issueToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueToken(subject, role string) (model.Tokens, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}
