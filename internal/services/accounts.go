package services

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

const minPasswordLength = 8

type RegisterInput struct {
	Username  string          `json:"username"`
	Password  string          `json:"password"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      models.UserRole `json:"-"`
}

type AccountService struct {
	DB *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.Role == "" {
		input.Role = models.UserRoleUser
	}

	verr := &ValidationError{}
	if !usernamePattern.MatchString(input.Username) {
		verr.add("username", "Enter a valid username of at most 150 letters, digits and @/./+/-/_ characters.")
	}
	if len(input.Password) < minPasswordLength {
		verr.add("password", fmt.Sprintf("Ensure the password has at least %d characters.", minPasswordLength))
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			verr.add("email", "Enter a valid email address.")
		}
	}
	if input.Role != models.UserRoleUser && input.Role != models.UserRoleAdmin {
		verr.add("role", msgInvalidChoice)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", input.Username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("user %q: %w", input.Username, ErrConflict)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
	})

	return &user, nil
}

func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "username = ?", strings.TrimSpace(username)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user %s", id)
	}
	return &user, nil
}
