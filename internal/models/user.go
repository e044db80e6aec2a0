package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth providers accepted at signup.
const (
	ProviderEmail    = "email"
	ProviderPhone    = "phone"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderApple    = "apple"
)

// Roles. The only modeled transition is user -> hoster; there is no
// downgrade path.
const (
	RoleUser   = "user"
	RoleHoster = "hoster"
	RoleAdmin  = "admin"
)

// User is a marketplace account. At least one of Email/Phone is set at
// creation. PasswordHash is absent for OAuth-only accounts. RefreshToken
// holds the single live refresh token for the account; every issuance
// overwrites it.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email                string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone                string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash         string             `bson:"password_hash,omitempty" json:"-"`
	AuthProvider         string             `bson:"auth_provider" json:"authProvider"`
	ProviderID           string             `bson:"provider_id,omitempty" json:"-"`
	FirstName            string             `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName             string             `bson:"last_name,omitempty" json:"lastName,omitempty"`
	DateOfBirth          *time.Time         `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	Role                 string             `bson:"role" json:"role"`
	IsVerified           bool               `bson:"is_verified" json:"isVerified"`
	VerificationCode     string             `bson:"verification_code,omitempty" json:"-"`
	RefreshToken         string             `bson:"refresh_token,omitempty" json:"-"`
	NotificationsEnabled bool               `bson:"notifications_enabled" json:"notificationsEnabled"`
	CreatedAt            time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ProfileComplete reports whether the one-shot profile completion has
// already happened.
func (u *User) ProfileComplete() bool {
	return u.FirstName != "" && u.LastName != "" && u.DateOfBirth != nil
}

// PublicUser is the projection of a User that is safe to return to a
// client: no password hash, no verification code, no refresh token.
type PublicUser struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email,omitempty"`
	Phone                string     `json:"phone,omitempty"`
	AuthProvider         string     `json:"authProvider"`
	FirstName            string     `json:"firstName,omitempty"`
	LastName             string     `json:"lastName,omitempty"`
	DateOfBirth          *time.Time `json:"dateOfBirth,omitempty"`
	Role                 string     `json:"role"`
	IsVerified           bool       `json:"isVerified"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
}

// Public builds the client-safe projection.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:                   u.ID.Hex(),
		Email:                u.Email,
		Phone:                u.Phone,
		AuthProvider:         u.AuthProvider,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		DateOfBirth:          u.DateOfBirth,
		Role:                 u.Role,
		IsVerified:           u.IsVerified,
		NotificationsEnabled: u.NotificationsEnabled,
	}
}
