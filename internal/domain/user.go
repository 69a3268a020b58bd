package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleFarmer   Role = "farmer"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	ProfilePic   string    `json:"profilePic"`
	FarmName     string    `json:"farmName"`
	Location     string    `json:"location"`
	Points       int       `json:"points"`
	PushToken    string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the authenticated /auth/me view: the user plus an activity count
// (delivered sales for farmers, non-cancelled orders for customers).
type Profile struct {
	User
	OrderCount int `json:"orderCount"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UserRepository interface {
	CreateUser(user *User) (*User, error)
	GetUserByID(id int64) (*User, error)
	GetUserByEmail(email string) (*User, error)
	// GetUserByContact matches either email or phone.
	GetUserByContact(contact string) (*User, error)
	UpdateUser(id int64, updates map[string]interface{}) (*User, error)
	UpdatePassword(id int64, passwordHash string) error
	// AddPoints applies an atomic increment to the loyalty counter.
	AddPoints(id int64, delta int) error
	DeleteUser(id int64) error
}

// OTPStore holds short-lived verification codes keyed by contact (email or
// phone). Entries expire on their own; Get on a missing or expired entry
// returns ErrNotFound.
type OTPStore interface {
	Set(ctx context.Context, contact, code string, ttl time.Duration) error
	Get(ctx context.Context, contact string) (string, error)
	Delete(ctx context.Context, contact string) error
}

type RegisterInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	Role       Role   `json:"role"`
	Address    string `json:"address"`
	FarmName   string `json:"farmName"`
	Location   string `json:"location"`
	IsVerified bool   `json:"isVerified"`
}

type AuthUseCase interface {
	SendRegistrationOTP(ctx context.Context, email string) error
	VerifyRegistrationOTP(ctx context.Context, email, otp string) error
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, contact, method string) error
	ResetPassword(ctx context.Context, contact, otp, newPassword string) error
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) (*User, error)
	DeleteAccount(ctx context.Context, userID int64) error
}
