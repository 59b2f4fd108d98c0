package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"go.uber.org/zap"
)

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	EmailExists(ctx context.Context, email string, excludeID int) (bool, error)
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) (bool, error)
	Search(ctx context.Context, name string, limit int) ([]domain.UserMatch, error)
}
type BalanceService interface {
	CreateBalance(ctx context.Context, userID int) error
	GetBalance(ctx context.Context, userID int) (int64, error)
}
type Service struct {
	userRepo       Repo
	balanceService BalanceService
	txManager      pg.TXManager
	hashService    auth.HashServiceInterface
	jwtService     auth.JWTServiceInterface
}

func New(repo Repo, balanceService BalanceService, txManager pg.TXManager, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:       repo,
		balanceService: balanceService,
		txManager:      txManager,
		hashService:    hashService,
		jwtService:     jwtService,
	}
}

const (
	tokenTTL          = 15 * time.Minute
	minPasswordLength = 8
	maxSearchResults  = 25
)

var (
	ErrEmailTaken         = domain.ErrEmailTaken
	ErrUserNotFound       = domain.ErrUserNotFound
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidProfile     = errors.New("invalid profile")
)

// Register creates the account together with its zero balance.
func (s *Service) Register(ctx context.Context, email, fullName, address, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("email already registered", zap.String("email", email))
		return nil, ErrEmailTaken
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Address:      strings.TrimSpace(address),
		PasswordHash: hashedPassword,
	}
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		newUser, err := s.userRepo.Create(ctx, user)
		if err != nil {
			return err
		}
		user = newUser
		return s.balanceService.CreateBalance(ctx, newUser.ID)
	})
	if err != nil {
		if !errors.Is(err, ErrEmailTaken) {
			zap.L().Error("can't register user: ", zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("email", email), zap.Int("user_id", user.ID))
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		zap.L().Info("invalid credentials", zap.String("email", email), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Info("invalid credentials", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.Int("user_id", user.ID))
	return user, nil
}

func (s *Service) GenerateToken(userID int) (string, error) {
	token, err := s.jwtService.GenerateJWT(userID, time.Now().Add(tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}

func (s *Service) Exists(ctx context.Context, userID int) (bool, error) {
	return s.userRepo.Exists(ctx, userID)
}

// Me returns the user's own account with the current balance.
func (s *Service) Me(ctx context.Context, userID int) (*domain.Account, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.account(ctx, user)
}

// UpdateProfile changes the fields set in upd. Emails are stored lower-cased
// and must not belong to another account; name and address may not be blank.
// Nothing is written when every field already has the requested value.
func (s *Service) UpdateProfile(ctx context.Context, userID int, upd domain.ProfileUpdate) (*domain.Account, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: email must contain \"@\"", ErrInvalidProfile)
		}
		if email != user.Email {
			taken, err := s.userRepo.EmailExists(ctx, email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailTaken
			}
			user.Email, changed = email, true
		}
	}
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full_name cannot be empty", ErrInvalidProfile)
		}
		if name != user.FullName {
			user.FullName, changed = name, true
		}
	}
	if upd.Address != nil {
		address := strings.TrimSpace(*upd.Address)
		if address == "" {
			return nil, fmt.Errorf("%w: address cannot be empty", ErrInvalidProfile)
		}
		if address != user.Address {
			user.Address, changed = address, true
		}
	}

	if changed {
		updated, err := s.userRepo.UpdateProfile(ctx, user)
		if err != nil {
			if !errors.Is(err, ErrEmailTaken) {
				zap.L().Error("can't update profile", zap.Int("user_id", userID), zap.Error(err))
			}
			return nil, err
		}
		if updated == nil {
			return nil, ErrUserNotFound
		}
		user = updated
		zap.L().Info("profile updated", zap.Int("user_id", userID))
	}
	return s.account(ctx, user)
}

// UpdatePassword replaces the password after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: new_password must be at least %d characters", ErrInvalidProfile, minPasswordLength)
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hashService.ComparePassword(user.PasswordHash, oldPassword) {
		zap.L().Info("password change with wrong current password", zap.Int("user_id", userID))
		return ErrInvalidCredentials
	}

	hash, err := s.hashService.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	ok, err := s.userRepo.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	zap.L().Info("password changed", zap.Int("user_id", userID))
	return nil
}

// SearchUsers finds at most 25 users whose name contains query. A blank
// query finds nobody.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]domain.UserMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.UserMatch{}, nil
	}
	return s.userRepo.Search(ctx, query, maxSearchResults)
}

func (s *Service) findUser(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		zap.L().Error("can't find user", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) account(ctx context.Context, user *domain.User) (*domain.Account, error) {
	balance, err := s.balanceService.GetBalance(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Account{User: *user, BalanceCents: balance}, nil
}
