package service

import (
	"context"
	"errors"
	"os"
	"regexp"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterUserRequest struct {
	Username         string `json:"username" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone"`
	Password         string `json:"password" binding:"required,min=6"`
	OrganizationName string `json:"organization_name" binding:"required"`
	OrganizationSlug string `json:"organization_slug" binding:"required"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	CreatedAt      string    `json:"created_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetProfile(ctx context.Context, actor Actor) (*UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	orgRepo   repository.OrganizationRepository
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, orgRepo repository.OrganizationRepository, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, orgRepo: orgRepo, txManager: txManager}
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

// Register creates a user and their organization; the first registrant of an
// organization becomes its OWNER.
func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, &ValidationError{Field: "email", Reason: "invalid email format"}
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, &ValidationError{Field: "username", Reason: "username already exists"}
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, &ValidationError{Field: "email", Reason: "email already exists"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
	}

	var member *model.Member
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, user); createErr != nil {
			return createErr
		}

		org, orgErr := s.orgRepo.FindBySlug(txCtx, req.OrganizationSlug)
		role := model.RoleMember
		if orgErr != nil {
			if !errors.Is(orgErr, gorm.ErrRecordNotFound) {
				return orgErr
			}
			org = &model.Organization{Name: req.OrganizationName, Slug: req.OrganizationSlug}
			if createErr := s.orgRepo.Create(txCtx, org); createErr != nil {
				return createErr
			}
			role = model.RoleOwner
		}

		member = &model.Member{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           role,
		}
		return s.repo.CreateMembership(txCtx, member)
	})
	if err != nil {
		return nil, err
	}

	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Phone:          user.Phone,
		OrganizationID: member.OrganizationID,
		Role:           member.Role,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, &AuthorizationError{Operation: "login", Reason: "invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &AuthorizationError{Operation: "login", Reason: "invalid email or password"}
	}

	member, err := s.repo.GetMembership(ctx, user.ID)
	if err != nil {
		return nil, &AuthorizationError{Operation: "login", Reason: "user has no organization membership"}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.Username,
		"org":  member.OrganizationID.String(),
		"role": member.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetProfile(ctx context.Context, actor Actor) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, &NotFoundError{Entity: "user", ID: actor.UserID.String()}
	}
	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Phone:          user.Phone,
		OrganizationID: actor.OrganizationID,
		Role:           actor.Role,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}, nil
}
