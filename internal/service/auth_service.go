package service

import (
	"errors"

	"sentra/config"
	"sentra/internal/auth"
	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
	ErrUnknownOrg     = errors.New("unknown organization")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	orgRepo  *repository.OrganizationRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, orgRepo *repository.OrganizationRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, orgRepo: orgRepo}
}

// Register creates an account in an organization. Role defaults to USER;
// OFFICER and ADMIN accounts are provisioned by an admin (createdBy) and
// created_by is written once here, never updated.
func (s *AuthService) Register(orgID uint, email, username, password, role string, createdBy *uint) (*models.User, string, string, error) {
	if _, err := s.orgRepo.GetByID(orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrUnknownOrg
		}
		return nil, "", "", err
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, "", "", ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, "", "", ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}

	if role != domain.RoleOfficer && role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		OrganizationID: orgID,
		Email:          email,
		Username:       username,
		PasswordHash:   string(hash),
		Role:           role,
		Active:         true,
		CreatedByID:    createdBy,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	return s.issueTokens(u)
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	return s.issueTokens(u)
}

func (s *AuthService) Refresh(refreshToken string) (*models.User, string, string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, "", "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, "", "", auth.ErrInvalidToken
	}
	return s.issueTokens(u)
}

func (s *AuthService) issueTokens(u *models.User) (*models.User, string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.OrganizationID, u.Email, u.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}
