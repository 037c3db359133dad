package services

import (
	"errors"
	"fmt"
	"time"

	"sessionpulse/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	loginTokenTTL = 24 * time.Hour
	resetTokenTTL = time.Hour

	resetTokenType = "password-reset"
)

var (
	ErrInvalidCredentials = errors.New("could not log in with the provided credentials")
	ErrEmailTaken         = errors.New("an account already exists for the provided email")
	ErrNotAdmin           = errors.New("user is not an admin")
	ErrIsAdmin            = errors.New("user is an admin")
	ErrInvalidResetToken  = errors.New("reset token is invalid")
)

type AuthService struct {
	db     *gorm.DB
	secret []byte
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, secret: []byte(jwtSecret)}
}

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	AccountType  string `json:"account_type"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Organization string `json:"organization"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(req *RegisterRequest) (*models.User, string, error) {
	var existing models.User
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	role := models.RoleGroupLead
	if req.AccountType == models.RoleFacilitator {
		role = models.RoleFacilitator
	}

	user := models.User{
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Organization:   req.Organization,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.signToken(user.ID, "", loginTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Login authenticates non-admin users. Admins get ErrIsAdmin so the client
// can redirect them to the admin login.
func (s *AuthService) Login(req *LoginRequest) (*models.User, string, error) {
	user, err := s.authenticate(req)
	if err != nil {
		return nil, "", err
	}
	if user.Role == models.RoleAdmin {
		return nil, "", ErrIsAdmin
	}

	token, err := s.signToken(user.ID, "", loginTokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) AdminLogin(req *LoginRequest) (*models.User, string, error) {
	user, err := s.authenticate(req)
	if err != nil {
		return nil, "", err
	}
	if user.Role != models.RoleAdmin {
		return nil, "", ErrNotAdmin
	}

	token, err := s.signToken(user.ID, "", loginTokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) authenticate(req *LoginRequest) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// IssueResetToken mints a one-hour token for a password reset email.
func (s *AuthService) IssueResetToken(email string) (string, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}

	token, err := s.signToken(user.ID, resetTokenType, resetTokenTTL)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ResetPassword completes a reset. Returns the user's role so the client can
// route them to the right login page.
func (s *AuthService) ResetPassword(resetToken, newPassword string) (string, error) {
	claims, err := s.parseToken(resetToken)
	if err != nil || claims.TokenType != resetTokenType {
		return "", ErrInvalidResetToken
	}

	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return "", ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user.HashedPassword = string(hashed)
	if err := s.db.Save(&user).Error; err != nil {
		return "", err
	}

	return user.Role, nil
}

func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) GetUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

// UpdateUserRole changes a user's role. Unknown role values are ignored, the
// user is returned unchanged.
func (s *AuthService) UpdateUserRole(userID uint, role string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin, models.RoleGroupLead, models.RoleFacilitator:
		user.Role = role
		if err := s.db.Save(user).Error; err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *AuthService) UpgradeToAdmin(userID uint) (*models.User, error) {
	return s.UpdateUserRole(userID, models.RoleAdmin)
}

func (s *AuthService) DeleteUser(userID uint) error {
	result := s.db.Delete(&models.User{}, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *AuthService) signToken(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parseToken(token string) (*authClaims, error) {
	claims := &authClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
