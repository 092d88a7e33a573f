package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/visioneers/marketplace-api/internal/config"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists          = errors.New("user with this email or username already exists")
	ErrInvalidCredentials  = errors.New("incorrect email/username or password")
	ErrAccountDeactivated  = errors.New("user account is deactivated")
	ErrInvalidVerification = errors.New("invalid verification token")
	ErrVerificationExpired = errors.New("verification token has expired")
	ErrUserNotFound        = errors.New("user not found")
)

const verificationTokenTTL = 24 * time.Hour

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Register creates a non-verified account and its verification token.
func (s *AuthService) Register(req *dto.RegisterRequest) (*models.User, error) {
	if req.Email == "" || req.Username == "" {
		return nil, errors.New("email and username are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	role := req.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if role != models.RoleBuyer && role != models.RoleSeller {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	var existing models.User
	err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token := uuid.NewString()
	expiry := time.Now().Add(verificationTokenTTL)

	user := models.User{
		Email:              req.Email,
		Username:           req.Username,
		HashedPassword:     string(hash),
		FullName:           req.FullName,
		Role:               role,
		IsActive:           true,
		IsVerified:         false,
		VerificationToken:  &token,
		VerificationExpiry: &expiry,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Login authenticates by email or username and issues an access token.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenResponse, error) {
	var user models.User
	if err := s.db.Where("email = ? OR username = ?", req.Identifier, req.Identifier).
		First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	token, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        UserView(&user),
	}, nil
}

// Verify marks the account verified when the token matches and is not past
// its expiry. An expired token is rejected even when it matches.
func (s *AuthService) Verify(token string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		return nil, ErrInvalidVerification
	}

	if user.VerificationExpiry == nil || time.Now().After(*user.VerificationExpiry) {
		return nil, ErrVerificationExpired
	}

	updates := map[string]interface{}{
		"is_verified":         true,
		"verification_token":  nil,
		"verification_expiry": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationExpiry = nil
	return &user, nil
}

func (s *AuthService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// UserView maps a user model onto its API shape.
func UserView(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
	}
}
