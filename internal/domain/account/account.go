// Package account holds the user entity shown in the admin back office
// and the self-service profile and password payloads.
package account

import (
	"time"

	"github.com/streamlift/panel_core/internal/resource"
)

// User is one customer or staff account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	BalanceCents int64     `json:"balance_cents"`
	Banned       bool      `json:"banned"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListKey addresses the cached admin user list.
func ListKey() resource.Key {
	return resource.NewKey("admin", "users")
}

// ProfileUpdate is the self-service profile form payload.
type ProfileUpdate struct {
	Name  string `json:"name" validate:"required,max=128"`
	Email string `json:"email" validate:"required,email"`
}

// PasswordChange is the self-service password form payload. The
// confirmation must repeat the new password exactly.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// UpdateProfile builds the self-service profile write.
func UpdateProfile(p ProfileUpdate) (action string, payload ProfileUpdate, affected []resource.Key) {
	return "PUT /api/v1/account/profile", p, []resource.Key{ListKey()}
}

// ChangePassword builds the self-service password write. It dirties no
// cached resource.
func ChangePassword(p PasswordChange) (action string, payload PasswordChange, affected []resource.Key) {
	return "POST /api/v1/account/password", p, nil
}

// AdminPatch is a partial admin edit of one account.
type AdminPatch struct {
	Role   *string `json:"role,omitempty"`
	Banned *bool   `json:"banned,omitempty"`
}

// AdminUpdate builds the admin write that edits a single account.
func AdminUpdate(id string, patch AdminPatch) (action string, payload AdminPatch, affected []resource.Key) {
	return "PATCH /api/v1/admin/users/" + id, patch, []resource.Key{ListKey()}
}

// AdminDelete builds the admin write that removes an account.
func AdminDelete(id string) (action string, affected []resource.Key) {
	return "DELETE /api/v1/admin/users/" + id, []resource.Key{ListKey()}
}
