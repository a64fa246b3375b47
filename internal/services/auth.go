package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type AuthService interface {
	Register(ctx context.Context, user *types.User) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, user *types.User) (*types.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Password == "" {
		return nil, invalidf("email and password are required")
	}
	if user.FirstName == "" || user.LastName == "" {
		return nil, invalidf("first and last name are required")
	}
	if !user.Role.Valid() || user.Role == types.RoleAdmin {
		// admin accounts are only created through promotion
		return nil, invalidf("role must be professor or aluno")
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, authz.Conflict("email is already in use")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user.ID = uuid.New()
	user.Password = string(hashed)
	created, err := as.userRepo.Create(ctx, nil, []*types.User{user})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return created[0], nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", invalidf("email and password are required")
	}
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", fmt.Errorf("fetching user: %w", err)
	}
	if user == nil {
		return "", "", authz.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", authz.Unauthenticated("invalid email or password")
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale, ftErr := as.userTokenRepo.GetByUserID(ctx, tx, user.ID)
		if ftErr != nil {
			return fmt.Errorf("checking existing tokens: %w", ftErr)
		}
		expiredIDs := make([]uuid.UUID, 0, len(stale))
		for _, t := range stale {
			if t.ExpiresAt.Before(time.Now()) {
				expiredIDs = append(expiredIDs, t.ID)
			}
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, expiredIDs); dErr != nil {
			return fmt.Errorf("deleting expired tokens: %w", dErr)
		}
		access, gErr := as.generateAccessToken(user)
		if gErr != nil {
			return fmt.Errorf("generating access token: %w", gErr)
		}
		accessToken = access
		refreshToken = uuid.New().String()
		_, cErr := as.userTokenRepo.Create(ctx, tx, &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		})
		if cErr != nil {
			return fmt.Errorf("creating user token: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", authz.Unauthenticated("missing refresh token")
	}
	var newAccess, newRefresh string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.userTokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if err != nil {
			return fmt.Errorf("fetching refresh token: %w", err)
		}
		if existing == nil {
			return authz.InvalidCredential("unknown refresh token", nil)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
				return fmt.Errorf("deleting expired refresh token: %w", dErr)
			}
			return authz.InvalidCredential("refresh token expired", nil)
		}
		user, err := as.userRepo.GetByID(ctx, existing.UserID)
		if err != nil {
			return fmt.Errorf("loading user for refresh: %w", err)
		}
		if user == nil {
			return authz.InvalidCredential("no user for refresh token", nil)
		}
		access, gErr := as.generateAccessToken(user)
		if gErr != nil {
			return fmt.Errorf("generating access token: %w", gErr)
		}
		newAccess = access
		newRefresh = uuid.New().String()
		if _, cErr := as.userTokenRepo.Create(ctx, tx, &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  newAccess,
			RefreshToken: newRefresh,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}); cErr != nil {
			return fmt.Errorf("creating user token: %w", cErr)
		}
		return as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID})
	})
	if err != nil {
		return "", "", err
	}
	return newAccess, newRefresh, nil
}

func (as *authService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return authz.Unauthenticated("missing credential")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := as.userTokenRepo.GetByAccessToken(ctx, tx, accessToken)
		if err != nil {
			return fmt.Errorf("fetching user token: %w", err)
		}
		if token == nil {
			return nil
		}
		return as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{token.ID})
	})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := authz.Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
