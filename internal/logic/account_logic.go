package logic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Greybash/ngo-service/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	bcryptCost        = 10
)

// Claims JWT 载荷，IsStaff 不写入 token，由 Authenticate 从数据库读取
type Claims struct {
	UserID  int64 `json:"uid"`
	IsStaff bool  `json:"-"`
	jwt.RegisteredClaims
}

// AccountLogic 账户注册登录
type AccountLogic struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewAccountLogic 创建账户业务逻辑
func NewAccountLogic(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AccountLogic {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &AccountLogic{
		db:       db,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
	}
}

// SignupRequest 注册表单
type SignupRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password1 string
	Password2 string
}

func validateSignup(req *SignupRequest) error {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password1 == "" || req.Password2 == "" {
		return newValidationError("", "all fields are required")
	}
	if req.Password1 != req.Password2 {
		return newValidationError("password2", "passwords do not match")
	}
	if len(req.Password1) < minPasswordLength {
		return newValidationError("password1", "password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// Signup 注册账户并创建空资料
func (a *AccountLogic) Signup(ctx context.Context, req *SignupRequest) (*model.UserModel, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateSignup(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.UserModel{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.UserModel{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(model.NewUserProfile(user.Id)).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("创建账户失败: %w", err)
	}

	return user, nil
}

// Login 校验密码并签发 token
func (a *AccountLogic) Login(ctx context.Context, email, password string) (string, *model.UserModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.UserModel
	if err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("查询账户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.IssueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// IssueToken 签发 HS256 token
func (a *AccountLogic) IssueToken(user *model.UserModel) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.Id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.Id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	return token, nil
}

// ParseToken 校验签名和有效期
func (a *AccountLogic) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate 校验 token 并读取账户当前的管理员标记，撤销权限后旧 token 立即失去管理员身份
func (a *AccountLogic) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := a.ParseToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var user model.UserModel
	err = a.db.WithContext(ctx).Select("id", "is_staff").First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("获取用户失败: %w", err)
	}

	claims.IsStaff = user.IsStaff
	return claims, nil
}

// SetStaff 设置管理员标记
func (a *AccountLogic) SetStaff(ctx context.Context, email string, staff bool) error {
	res := a.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("is_staff", staff)
	if res.Error != nil {
		return fmt.Errorf("更新管理员标记失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
