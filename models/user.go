package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role names form a closed set resolved by joining User.RoleID against Role.
const (
	RoleSuperAdmin        = "Super Admin"
	RoleSystemAdmin       = "System Admin"
	RoleMunicipalityAdmin = "Municipality Admin"
	RoleManager           = "Manager"
	RoleContractor        = "Contractor"
	RoleUser              = "User"
)

type User struct {
	ID             int       `bson:"_id" json:"user_id"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email" json:"email"`
	Password       string    `bson:"password_hash,omitempty" json:"password_hash,omitempty"`
	RoleID         int       `bson:"role_id" json:"role_id"`
	MunicipalityID *int      `bson:"municipality_id,omitempty" json:"municipality_id"`
	CorporationID  int       `bson:"corporation_id" json:"corporation_id"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`

	// Role is the resolved role name, never persisted.
	Role string `bson:"-" json:"role,omitempty"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

type Role struct {
	ID   int    `bson:"_id" json:"role_id"`
	Name string `bson:"role_name" json:"role_name"`
}

// Principal is the authenticated user plus resolved role name, as held by the
// session store and consumed by scope checks.
type Principal struct {
	UserID         int    `json:"user_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	MunicipalityID *int   `json:"municipality_id"`
	CorporationID  int    `json:"corporation_id"`
}
