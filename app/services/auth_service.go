package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService struct {
	db           *gorm.DB
	userRepo     repositories.UserRepository
	customerRepo repositories.CustomerRepository
	jwtSecret    []byte
	jwtTTL       time.Duration
	logger       *zap.Logger
}

func NewAuthService(db *gorm.DB, userRepo repositories.UserRepository, customerRepo repositories.CustomerRepository, jwtSecret []byte, jwtTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:           db,
		userRepo:     userRepo,
		customerRepo: customerRepo,
		jwtSecret:    jwtSecret,
		jwtTTL:       jwtTTL,
		logger:       logger,
	}
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Register creates the user and its customer profile in one transaction, so a user never
// exists without a customer.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if len(in.Password) > MaxPasswordBytes {
		fields["password"] = fmt.Sprintf("Ensure this field has no more than %d bytes.", MaxPasswordBytes)
	}
	if exists, err := s.userRepo.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if exists {
		fields["username"] = "A user with that username already exists."
	}
	if exists, err := s.userRepo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if exists {
		fields["email"] = "A user with that email already exists."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashed,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		return s.customerRepo.Create(ctx, tx, &models.Customer{
			UserID:     user.ID,
			Membership: models.MembershipSilver,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ValidationError{
				Fields: map[string]string{"username": "A user with that username or email already exists."},
				Err:    err,
			}
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("AuthService.Register: user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and returns the user together with a signed access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !PasswordCompare(user.Password, []byte(password)) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies an access token and returns the user id it was issued for.
func (s *AuthService) ParseToken(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("token verification failed: %w", ErrUnauthenticated)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("token has no user id: %w", ErrUnauthenticated)
	}
	return uint(id), nil
}

// ResolveCaller loads the user behind an id taken from a token or session. Unknown ids
// resolve to the anonymous caller.
func (s *AuthService) ResolveCaller(ctx context.Context, userID uint) (Caller, error) {
	if userID == 0 {
		return Caller{}, nil
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Caller{}, nil
		}
		return Caller{}, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return Caller{UserID: user.ID, IsStaff: user.IsStaff}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, caller Caller) (*models.User, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func PasswordCompare(hashPass string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashPass), password) == nil
}
