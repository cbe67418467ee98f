package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type adminSession struct {
	AdminID string
	Email   string
}

var errNoAdminSession = errors.New("no valid admin session")

const adminCookieName = "admin_session"

// AdminStore handles the dashboard credential check and session cookies.
// It is deliberately thin: one seeded admin, bcrypt compare, opaque
// session rows. Tour data never passes through here.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore seeds the configured admin account if none exists yet.
// The password is hashed at seed time, so rotating ADMIN_PASSWORD only
// takes effect on a fresh database.
func NewAdminStore(ctx context.Context, db *sql.DB, email, password string) (*AdminStore, error) {
	s := &AdminStore{db: db}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return s, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash) VALUES (lower(hex(randomblob(16))), ?, ?)`,
		strings.ToLower(strings.TrimSpace(email)), string(hash),
	)
	if err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	return s, nil
}

// Login verifies credentials and creates a session, returning its id.
func (s *AdminStore) Login(ctx context.Context, email, password string) (adminSession, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, email,
	).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, "", errNoAdminSession
	}
	if err != nil {
		return adminSession{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return adminSession{}, "", errNoAdminSession
	}

	var sessionID string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO admin_sessions (admin_id) VALUES (?) RETURNING id`, adminID,
	).Scan(&sessionID)
	if err != nil {
		return adminSession{}, "", err
	}
	return adminSession{AdminID: adminID, Email: email}, sessionID, nil
}

// FromSession resolves a session cookie value to the admin it belongs to.
func (s *AdminStore) FromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

// DeleteSession logs a session out. Unknown ids are a no-op.
func (s *AdminStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
