package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"credhub/internal/caching"
	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	signInAttemptLimit  = 10
	signInAttemptWindow = 5 * time.Minute
	tokenIssuer         = "credhub"
	signUpConfirmation  = "Check your email for the confirmation link!"
)

var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrUserAlreadyExists  = errors.New("User already registered")
	ErrTooManyAttempts    = errors.New("Too many sign-in attempts, try again later")
	ErrInvalidToken       = errors.New("invalid or expired access token")
)

// AuthService handles password sign-in and JWT sessions.
type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	// GetSession returns nil without error when the token carries no live
	// session.
	GetSession(ctx context.Context, accessToken string) (*models.Session, error)
	// Subscribe registers fn for sign-in and sign-out events and returns the
	// function that removes it.
	Subscribe(fn func(models.SessionEvent)) (unsubscribe func())
}

// SessionClaims are the claims of an access token.
type SessionClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type SignUpRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	RedirectTo string `json:"redirect_to" validate:"omitempty,url"`
}

type SignUpResult struct {
	User       *models.User `json:"user"`
	RedirectTo string       `json:"redirect_to"`
	Message    string       `json:"message"`
}

type authService struct {
	userRepo   repositories.UserRepository
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   time.Duration
	redirectTo string
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	nextSubID int
	listeners map[int]func(models.SessionEvent)
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string, tokenTTL time.Duration, redirectTo string, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		redirectTo: redirectTo,
		logger:     logger,
		now:        time.Now,
		listeners:  map[int]func(models.SessionEvent){},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignUp(ctx context.Context, req *SignUpRequest) (*SignUpResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &models.User{Email: req.Email, PasswordHash: string(hash)})
	if err != nil {
		if qe, ok := common.AsQueryError(err); ok && qe.Kind == common.QueryKindConflict {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	redirectTo := req.RedirectTo
	if redirectTo == "" {
		redirectTo = s.redirectTo
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID.String()))
	return &SignUpResult{User: user, RedirectTo: redirectTo, Message: signUpConfirmation}, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	limited, err := s.cacheSvc.IsRateLimited(ctx, "signin:"+email, signInAttemptLimit, signInAttemptWindow)
	if err != nil {
		s.logger.Warn("sign-in rate limit check failed", zap.Error(err))
	} else if limited {
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetSession(ctx, session, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.publish(models.SessionEvent{Type: models.SessionSignedIn, Session: session})
	return session, nil
}

func (s *authService) issue(user *models.User) (*models.Session, error) {
	now := s.now()
	sessionID := uuid.NewString()
	expiresAt := now.Add(s.tokenTTL)

	claims := SessionClaims{
		Email:     user.Email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		SessionID:   sessionID,
		UserID:      user.ID,
		Email:       user.Email,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) parse(accessToken string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	token, err := jwt.ParseWithClaims(accessToken, &SessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) GetSession(ctx context.Context, accessToken string) (*models.Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, nil
	}
	claims, err := s.parse(accessToken)
	if err != nil {
		return nil, err
	}
	session, err := s.cacheSvc.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *authService) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.parse(accessToken, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	session, _ := s.cacheSvc.GetSession(ctx, claims.SessionID)
	if err := s.cacheSvc.DeleteSession(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.publish(models.SessionEvent{Type: models.SessionSignedOut, Session: session})
	return nil
}

func (s *authService) Subscribe(fn func(models.SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *authService) publish(event models.SessionEvent) {
	s.mu.Lock()
	fns := make([]func(models.SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
