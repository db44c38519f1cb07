package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdeans2217/canvas-parent-cli/internal/config"
	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

// Claims represents the JWT claims for a caregiver session.
type Claims struct {
	jwt.RegisteredClaims
	CaregiverID uuid.UUID `json:"caregiver_id"`
	Email       string    `json:"email"`
}

// AssignClaims represents the JWT claims embedded in a one-click assignment
// link. The token authorizes exactly one scan.
type AssignClaims struct {
	jwt.RegisteredClaims
	ScanID uuid.UUID `json:"scan_id"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
	IssueAssignToken(scanID uuid.UUID) (string, error)
	ValidateAssignToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	caregiverRepo port.CaregiverRepository
	cfg           config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(caregiverRepo port.CaregiverRepository, cfg config.JWTConfig) AuthService {
	return &authService{
		caregiverRepo: caregiverRepo,
		cfg:           cfg,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	caregiver, err := s.caregiverRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if !caregiver.IsActive {
		return nil, domain.ErrCaregiverInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(caregiver.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokenPair(caregiver)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, "refresh")
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	caregiver, err := s.caregiverRepo.GetByID(ctx, claims.CaregiverID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !caregiver.IsActive {
		return nil, domain.ErrCaregiverInactive
	}

	return s.generateTokenPair(caregiver)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, "access")
}

// IssueAssignToken mints a short-lived token that lets the emailed review
// link resolve back to its scan without a logged-in session.
func (s *authService) IssueAssignToken(scanID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &AssignClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   scanID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AssignTokenExpiry)),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{"assign"},
		},
		ScanID: scanID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing assign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateAssignToken(tokenString string) (uuid.UUID, error) {
	claims := &AssignClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, domain.ErrAssignTokenInvalid
	}
	if !hasAudience(claims.Audience, "assign") {
		return uuid.Nil, domain.ErrAssignTokenInvalid
	}
	return claims.ScanID, nil
}

func (s *authService) generateTokenPair(caregiver *domain.Caregiver) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiry)

	accessClaims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caregiver.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{"access"},
		},
		CaregiverID: caregiver.ID,
		Email:       caregiver.Email,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshClaims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caregiver.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{"refresh"},
		},
		CaregiverID: caregiver.ID,
		Email:       caregiver.Email,
	}

	refreshTokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshTokenObj.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !hasAudience(aud, audience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
