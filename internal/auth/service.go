package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// Config holds authentication configuration
type Config struct {
	JWTSecret          []byte        // Secret key for signing tokens
	AccessTokenExpiry  time.Duration // How long access tokens are valid
	RefreshTokenExpiry time.Duration // How long refresh tokens are valid
	MaxFailedAttempts  int           // Lock account after this many failures
	LockDuration       time.Duration // How long to lock account
}

// DefaultConfig returns sensible defaults
func DefaultConfig(jwtSecret string) Config {
	return Config{
		JWTSecret:          []byte(jwtSecret),
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		MaxFailedAttempts:  5,
		LockDuration:       15 * time.Minute,
	}
}

// CustomerStore is the persistence surface the auth service needs
type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer *model.Customer) error
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error)
	IncrementFailedAttempts(ctx context.Context, id uuid.UUID) (int, error)
	ResetFailedAttempts(ctx context.Context, id uuid.UUID) error
	LockCustomer(ctx context.Context, id uuid.UUID, until time.Time) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// Claims represents the JWT payload
type Claims struct {
	jwt.RegisteredClaims
	CustomerID uuid.UUID  `json:"customer_id"`
	Email      string     `json:"email"`
	Role       model.Role `json:"role"`
	TokenType  string     `json:"token_type"` // "access" or "refresh"
}

// Service handles authentication operations
type Service struct {
	config Config
	store  CustomerStore
}

// NewService creates a new auth service
func NewService(config Config, store CustomerStore) *Service {
	return &Service{config: config, store: store}
}

// TokenPair contains both access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"` // Access token expiry
}

// Register creates a new customer account
func (s *Service) Register(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now()
	customer := &model.Customer{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleCustomer,
		Status:       model.CustomerStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// Login authenticates a customer and returns tokens
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.store.GetCustomerByEmail(ctx, req.Email)
	if err != nil {
		// Don't reveal whether email exists
		return nil, model.ErrInvalidCredentials
	}

	if !customer.CanLogin() {
		if customer.IsLocked() {
			return nil, model.ErrAccountLocked
		}
		return nil, model.ErrAccountSuspended
	}

	err = bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(req.Password))
	if err != nil {
		s.handleFailedLogin(ctx, customer)
		return nil, model.ErrInvalidCredentials
	}

	// Success - reset failed attempts and update last login
	s.store.ResetFailedAttempts(ctx, customer.ID)
	s.store.UpdateLastLogin(ctx, customer.ID)

	return s.generateTokenPair(customer)
}

// RefreshTokens generates new tokens using a valid refresh token
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != "refresh" {
		return nil, errors.New("invalid token type")
	}

	// Fetch customer to ensure they still exist and are active
	customer, err := s.store.GetCustomerByID(ctx, claims.CustomerID)
	if err != nil {
		return nil, err
	}

	if customer.Status != model.CustomerStatusActive {
		return nil, model.ErrAccountSuspended
	}

	return s.generateTokenPair(customer)
}

// ChangePassword verifies the current password and replaces it
func (s *Service) ChangePassword(ctx context.Context, customerID uuid.UUID, req model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	customer, err := s.store.GetCustomerByID(ctx, customerID)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(req.CurrentPassword))
	if err != nil {
		return model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	return s.store.UpdatePassword(ctx, customerID, string(hash))
}

// ValidateToken parses and validates a JWT token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.config.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// generateTokenPair creates access and refresh tokens for a customer
func (s *Service) generateTokenPair(customer *model.Customer) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenExpiry)
	refreshExpiry := now.Add(s.config.RefreshTokenExpiry)

	newClaims := func(expiry time.Time, tokenType string) Claims {
		return Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   customer.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiry),
				Issuer:    "meridian-banking",
			},
			CustomerID: customer.ID,
			Email:      customer.Email,
			Role:       customer.Role,
			TokenType:  tokenType,
		}
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(accessExpiry, "access"))
	accessSigned, err := accessToken.SignedString(s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(refreshExpiry, "refresh"))
	refreshSigned, err := refreshToken.SignedString(s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessSigned,
		RefreshToken: refreshSigned,
		ExpiresAt:    accessExpiry,
	}, nil
}

// handleFailedLogin increments failed attempts and locks if necessary
func (s *Service) handleFailedLogin(ctx context.Context, customer *model.Customer) {
	attempts, _ := s.store.IncrementFailedAttempts(ctx, customer.ID)

	if attempts >= s.config.MaxFailedAttempts {
		lockUntil := time.Now().Add(s.config.LockDuration)
		s.store.LockCustomer(ctx, customer.ID, lockUntil)
	}
}

// HashPassword is a utility for hashing passwords (useful for tests/seeding)
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}
