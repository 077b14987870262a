package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser inserts a new account. Returns ErrDuplicate if the email is taken.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, credits int) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, credits)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, credits, created_at
	`, email, passwordHash, credits).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicate
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUserByEmail looks up an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, credits, created_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user by email: %w", err)
	}
	return u, nil
}

// GetUserByID looks up an account by id.
func (s *Store) GetUserByID(ctx context.Context, id int) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, credits, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Credits, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user by id: %w", err)
	}
	return u, nil
}

// DeductCredits atomically deducts credits from a user's balance.
// Returns the remaining balance, or ErrInsufficientCredits without
// modifying the balance when it would go negative.
func (s *Store) DeductCredits(ctx context.Context, userID, amount int) (int, error) {
	var remaining int
	err := s.db.QueryRowContext(ctx, `
		UPDATE users SET credits = credits - $2
		WHERE id = $1 AND credits >= $2
		RETURNING credits
	`, userID, amount).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the user is gone or the balance is too low; disambiguate.
		if _, lookupErr := s.GetUserByID(ctx, userID); lookupErr != nil {
			return 0, lookupErr
		}
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, fmt.Errorf("deduct credits: %w", err)
	}
	return remaining, nil
}

// RefundCredits returns credits to a user's balance, used to undo a
// charge when the operation it paid for fails.
func (s *Store) RefundCredits(ctx context.Context, userID, amount int) (int, error) {
	var remaining int
	err := s.db.QueryRowContext(ctx, `
		UPDATE users SET credits = credits + $2
		WHERE id = $1
		RETURNING credits
	`, userID, amount).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("refund credits: %w", err)
	}
	return remaining, nil
}
