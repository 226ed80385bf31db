// Package users is the relational side of the system: account lookup and
// credential checks against Postgres. Attendance events live in the document
// store and never touch these tables.
package users

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"attendtrack/internal/apperr"
)

// Roles recognized by the authorization gates.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// ErrInvalidCredentials is returned when the identifier does not resolve to
// an active account or the password does not match. Callers must not
// distinguish the two cases.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an active account. Students identify by registration number, admins
// by admin id.
type User struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	AdminID            string `json:"adminId,omitempty"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Department         string `json:"department,omitempty"`
}

// Repo reads user accounts from Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repo.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Authenticate resolves an identifier within a role and verifies the
// password. Only active accounts qualify.
func (r *Repo) Authenticate(ctx context.Context, identifier, role, password string) (*User, error) {
	var column string
	switch role {
	case RoleAdmin:
		column = "admin_id"
	case RoleStudent:
		column = "registration_number"
	default:
		return nil, ErrInvalidCredentials
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, registration_number, admin_id, name, email, password_hash, role, department
		FROM users
		WHERE `+column+` = $1 AND role = $2 AND is_active = TRUE
	`, identifier, role)

	var (
		u            User
		regNo        sql.NullString
		adminID      sql.NullString
		dept         sql.NullString
		passwordHash string
	)
	if err := row.Scan(&u.ID, &regNo, &adminID, &u.Name, &u.Email, &passwordHash, &u.Role, &dept); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.NewStorage("user lookup", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u.RegistrationNumber = regNo.String
	u.AdminID = adminID.String
	u.Department = dept.String
	return &u, nil
}

// FindByID returns an active user by primary id.
func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, registration_number, admin_id, name, email, role, department
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, id)

	var (
		u       User
		regNo   sql.NullString
		adminID sql.NullString
		dept    sql.NullString
	)
	if err := row.Scan(&u.ID, &regNo, &adminID, &u.Name, &u.Email, &u.Role, &dept); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NewNotFound("user", id)
		}
		return nil, apperr.NewStorage("user lookup", err)
	}
	u.RegistrationNumber = regNo.String
	u.AdminID = adminID.String
	u.Department = dept.String
	return &u, nil
}
