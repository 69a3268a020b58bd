package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Anniix/kisanx-backend/internal/clients"
	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpTTL         = 10 * time.Minute
	tokenLifetime  = 7 * 24 * time.Hour
	minPasswordLen = 8
)

var _ domain.AuthUseCase = (*authUseCase)(nil)

type authUseCase struct {
	userRepo    domain.UserRepository
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	otpStore    domain.OTPStore
	mailer      clients.Mailer
	jwtSecret   []byte
	log         *logrus.Logger
}

func NewAuthUseCase(
	userRepo domain.UserRepository,
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	otpStore domain.OTPStore,
	mailer clients.Mailer,
	jwtSecret string,
	logger *logrus.Logger,
) domain.AuthUseCase {
	return &authUseCase{
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		otpStore:    otpStore,
		mailer:      mailer,
		jwtSecret:   []byte(jwtSecret),
		log:         logger,
	}
}

// newOTP draws the code from crypto/rand; these codes gate password resets.
func newOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// only reachable when the OS entropy source is unavailable
		return fmt.Sprintf("%06d", time.Now().UnixNano()%900000+100000)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

func (uc *authUseCase) signToken(user *domain.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(tokenLifetime).Unix(),
	})
	return token.SignedString(uc.jwtSecret)
}

func (uc *authUseCase) SendRegistrationOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return fmt.Errorf("invalid email format: %w", domain.ErrValidation)
	}

	if _, err := uc.userRepo.GetUserByEmail(email); err == nil {
		uc.log.Warnf("Use Case: Registration OTP refused, user already exists: %s", email)
		return fmt.Errorf("user already exists: %w", domain.ErrValidation)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to check email existence: %w", err)
	}

	otp := newOTP()
	if err := uc.otpStore.Set(ctx, email, otp, otpTTL); err != nil {
		return err
	}

	if err := uc.mailer.SendOTP(ctx, email, otp, "KisanX Email Verification Code"); err != nil {
		uc.log.Errorf("Use Case: Failed to send registration OTP to %s: %v", email, err)
		return fmt.Errorf("failed to send OTP: %w", err)
	}

	uc.log.Infof("Use Case: Registration OTP sent to %s", email)
	return nil
}

func (uc *authUseCase) VerifyRegistrationOTP(ctx context.Context, email, otp string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	stored, err := uc.otpStore.Get(ctx, email)
	if err != nil || stored != otp {
		uc.log.Warnf("Use Case: Invalid or expired registration OTP for %s", email)
		return fmt.Errorf("invalid or expired OTP: %w", domain.ErrValidation)
	}

	if err := uc.otpStore.Delete(ctx, email); err != nil {
		uc.log.Warnf("Use Case: Failed to delete consumed OTP for %s: %v", email, err)
	}

	uc.log.Infof("Use Case: Email verified for %s", email)
	return nil
}

func (uc *authUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResponse, error) {
	if !input.IsVerified {
		return nil, fmt.Errorf("please verify your email first: %w", domain.ErrValidation)
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("first and last name cannot be empty: %w", domain.ErrValidation)
	}
	if !isValidEmail(input.Email) {
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrValidation)
	}
	if len(input.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters long: %w", minPasswordLen, domain.ErrValidation)
	}
	if input.Role == "" {
		input.Role = domain.RoleCustomer
	}
	if input.Role != domain.RoleCustomer && input.Role != domain.RoleFarmer {
		return nil, fmt.Errorf("invalid role '%s': %w", input.Role, domain.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", input.Email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	user, err := uc.userRepo.CreateUser(&domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		PasswordHash: string(hashed),
		Role:         input.Role,
		FarmName:     input.FarmName,
		Location:     input.Location,
	})
	if err != nil {
		return nil, err
	}

	token, err := uc.signToken(user)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to sign token for new user %d: %v", user.ID, err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %d, Email: %s, Role: %s", user.ID, user.Email, user.Role)
	return &domain.AuthResponse{Token: token, User: user}, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Login failed, user not found: %s", email)
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrValidation)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("Use Case: Login failed, incorrect password for %s", email)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrValidation)
	}

	token, err := uc.signToken(user)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to sign token for user %d: %v", user.ID, err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.log.Infof("Use Case: Login successful for user %d (%s)", user.ID, user.Role)
	return &domain.AuthResponse{Token: token, User: user}, nil
}

func (uc *authUseCase) ForgotPassword(ctx context.Context, contact, method string) error {
	contact = strings.TrimSpace(contact)

	if _, err := uc.userRepo.GetUserByContact(contact); err != nil {
		return err
	}

	otp := newOTP()
	if err := uc.otpStore.Set(ctx, contact, otp, otpTTL); err != nil {
		return err
	}

	if method == "email" {
		if err := uc.mailer.SendOTP(ctx, contact, otp, "KisanX Password Reset OTP"); err != nil {
			uc.log.Errorf("Use Case: Failed to send reset OTP to %s: %v", contact, err)
			return fmt.Errorf("failed to send OTP: %w", err)
		}
	} else {
		// SMS transport is not wired; the code still lands in the store.
		uc.log.Infof("[SIMULATION] SMS sent to %s with password reset OTP", contact)
	}

	uc.log.Infof("Use Case: Password reset OTP issued for %s via %s", contact, method)
	return nil
}

func (uc *authUseCase) ResetPassword(ctx context.Context, contact, otp, newPassword string) error {
	contact = strings.TrimSpace(contact)

	stored, err := uc.otpStore.Get(ctx, contact)
	if err != nil || stored != otp {
		uc.log.Warnf("Use Case: Invalid or expired reset OTP for %s", contact)
		return fmt.Errorf("invalid or expired OTP: %w", domain.ErrValidation)
	}

	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long: %w", minPasswordLen, domain.ErrValidation)
	}

	user, err := uc.userRepo.GetUserByContact(contact)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("internal error processing password: %w", err)
	}
	if err := uc.userRepo.UpdatePassword(user.ID, string(hashed)); err != nil {
		return err
	}

	if err := uc.otpStore.Delete(ctx, contact); err != nil {
		uc.log.Warnf("Use Case: Failed to delete consumed reset OTP for %s: %v", contact, err)
	}

	uc.log.Infof("Use Case: Password reset completed for user %d", user.ID)
	return nil
}

func (uc *authUseCase) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	user, err := uc.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var count int
	if user.Role == domain.RoleFarmer {
		count, err = uc.orderRepo.CountDeliveredByFarmer(userID)
	} else {
		count, err = uc.orderRepo.CountActiveByCustomer(userID)
	}
	if err != nil {
		uc.log.Warnf("Use Case: Failed to count orders for profile of user %d: %v", userID, err)
		count = 0
	}

	return &domain.Profile{User: *user, OrderCount: count}, nil
}

func (uc *authUseCase) UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) (*domain.User, error) {
	user, err := uc.userRepo.UpdateUser(userID, updates)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Profile updated for user %d", userID)
	return user, nil
}

// DeleteAccount removes the user together with what they own: a farmer's
// products, a customer's order history. A failed cascade is logged and does
// not block the account deletion.
func (uc *authUseCase) DeleteAccount(ctx context.Context, userID int64) error {
	user, err := uc.userRepo.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleFarmer {
		if deleted, err := uc.productRepo.DeleteProductsByFarmer(userID); err != nil {
			uc.log.Errorf("Use Case: Cascade delete of products for farmer %d failed: %v", userID, err)
		} else {
			uc.log.Infof("Use Case: Deleted %d products for departing farmer %d", deleted, userID)
		}
	} else {
		if deleted, err := uc.orderRepo.DeleteOrdersByCustomer(userID); err != nil {
			uc.log.Errorf("Use Case: Cascade delete of orders for customer %d failed: %v", userID, err)
		} else {
			uc.log.Infof("Use Case: Deleted %d orders for departing customer %d", deleted, userID)
		}
	}

	if err := uc.userRepo.DeleteUser(userID); err != nil {
		return err
	}

	uc.log.Infof("Use Case: Account %d deleted", userID)
	return nil
}

func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}
