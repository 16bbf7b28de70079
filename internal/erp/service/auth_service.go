package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-oms/internal/config"
	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/bitfantasy/nimo-oms/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo *repository.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(ur *repository.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{userRepo: ur, jwtCfg: jwtCfg}
}

// Login 用户名密码登录，签发JWT
func (s *AuthService) Login(username, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, "", fmt.Errorf("用户名或密码错误")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("用户名或密码错误")
	}

	expire := s.jwtCfg.AccessTokenExpire
	if expire == 0 {
		expire = 24 * time.Hour
	}
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  []string{user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}
	return user, signed, nil
}

// EnsureAdmin 首次启动时创建默认管理员
func (s *AuthService) EnsureAdmin(username, password string) error {
	total, err := s.userRepo.Count()
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Create(&entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         "admin",
	})
}

func (s *AuthService) GetByID(id string) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}
