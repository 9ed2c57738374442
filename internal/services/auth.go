package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/accessly-backend/internal/clients/redis"
	"github.com/yungbote/accessly-backend/internal/data/repos"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/domain/user"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

const (
	DefaultAccessTTL = time.Hour
	BcryptCost       = 10
)

// dummyHash is compared against when the email is unknown so that both login
// failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("accessly-unknown-user"), BcryptCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return h
})

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"emailId"`
	Password  string `json:"password"`
}

// JWTClaims carries the user id in sub and the email alongside it.
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*types.User, *JWTClaims, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	revocations  redis.RevocationStore
	jwtSecretKey []byte
	accessTTL    time.Duration
	now          func() time.Time
	compare      func(hash, password []byte) error
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	revocations redis.RevocationStore,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		revocations:  revocations,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		now:          time.Now,
		compare:      bcrypt.CompareHashAndPassword,
	}
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, string, error) {
	email := user.NormalizeEmail(in.Email)
	if err := user.ValidateRegistration(in.FirstName, in.LastName, email, in.Password); err != nil {
		observability.Current().IncAuthEvent("register", "invalid")
		return nil, "", err
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, "", apierr.Internal(fmt.Errorf("check email: %w", err))
	}
	if exists {
		observability.Current().IncAuthEvent("register", "duplicate")
		return nil, "", apierr.DuplicateKey("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return nil, "", apierr.Internal(fmt.Errorf("hash password: %w", err))
	}

	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		ScansAll:  []uuid.UUID{},
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{u}); err != nil {
		// a concurrent registration can still win the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.Current().IncAuthEvent("register", "duplicate")
			return nil, "", apierr.DuplicateKey("email already registered")
		}
		return nil, "", apierr.Internal(fmt.Errorf("create user: %w", err))
	}

	token, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", apierr.Internal(err)
	}
	observability.Current().IncAuthEvent("register", "ok")
	as.log.Info("User registered", "user_id", u.ID)
	return u, token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		observability.Current().IncAuthEvent("login", "invalid")
		return nil, "", apierr.Validation("emailId and password are required")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, "", apierr.Internal(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		_ = as.compare(dummyHash(), []byte(password))
		observability.Current().IncAuthEvent("login", "rejected")
		return nil, "", apierr.InvalidCredentials()
	}
	u := users[0]
	if err := as.compare([]byte(u.Password), []byte(password)); err != nil {
		observability.Current().IncAuthEvent("login", "rejected")
		return nil, "", apierr.InvalidCredentials()
	}

	token, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", apierr.Internal(err)
	}
	observability.Current().IncAuthEvent("login", "ok")
	return u, token, nil
}

// Logout revokes token until its own expiry. The claims are read without
// verifying the signature; a token that already expired needs no entry.
func (as *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apierr.Unauthenticated(nil)
	}
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return apierr.Unauthenticated(fmt.Errorf("decode token: %w", err))
	}
	if claims.ExpiresAt == nil {
		return apierr.Unauthenticated(errors.New("token has no expiry"))
	}
	if err := as.revocations.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return apierr.Internal(err)
	}
	observability.Current().IncAuthEvent("logout", "ok")
	return nil
}

func (as *authService) Authenticate(ctx context.Context, token string) (*types.User, *JWTClaims, error) {
	if token == "" {
		return nil, nil, apierr.Unauthenticated(nil)
	}
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil || !parsed.Valid {
		return nil, nil, apierr.Unauthenticated(fmt.Errorf("invalid or expired token: %w", err))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, apierr.Unauthenticated(fmt.Errorf("invalid user id in token: %w", err))
	}

	revoked, err := as.revocations.IsRevoked(ctx, token)
	if err != nil {
		return nil, nil, apierr.Internal(err)
	}
	if revoked {
		return nil, nil, apierr.Unauthenticated(errors.New("token revoked"))
	}

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, nil, apierr.Internal(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return nil, nil, apierr.Unauthenticated(errors.New("user not found"))
	}
	return users[0], claims, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
