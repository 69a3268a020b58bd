package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const userColumns = `id, first_name, last_name, email, phone, address, password_hash, role, profile_pic, farm_name, location, points, push_token, created_at, updated_at`

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Address,
		&user.PasswordHash,
		&user.Role,
		&user.ProfilePic,
		&user.FarmName,
		&user.Location,
		&user.Points,
		&user.PushToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) CreateUser(user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (first_name, last_name, email, phone, address, password_hash, role, profile_pic, farm_name, location)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, points, created_at, updated_at`

	err := r.db.QueryRow(query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Address,
		user.PasswordHash,
		user.Role,
		user.ProfilePic,
		user.FarmName,
		user.Location,
	).Scan(&user.ID, &user.Points, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Attempted to register duplicate email: %s", user.Email)
			return nil, fmt.Errorf("user with email '%s' already exists: %w", user.Email, domain.ErrValidation)
		}
		r.log.Errorf("Failed to create user %s: %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("User created successfully. ID: %d, Email: %s, Role: %s", user.ID, user.Email, user.Role)
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(id int64) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with ID %d not found", id)
			return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with email %s not found", email)
			return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByContact(contact string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $2`, strings.ToLower(contact), contact))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with contact %s not found", contact)
			return nil, fmt.Errorf("user with contact %s: %w", contact, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get user by contact %s: %v", contact, err)
		return nil, fmt.Errorf("could not get user by contact: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateUser(id int64, updates map[string]interface{}) (*domain.User, error) {
	if len(updates) == 0 {
		return r.GetUserByID(id)
	}

	allowed := map[string]string{
		"firstName":  "first_name",
		"lastName":   "last_name",
		"phone":      "phone",
		"address":    "address",
		"profilePic": "profile_pic",
		"farmName":   "farm_name",
		"location":   "location",
		"pushToken":  "push_token",
	}

	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1
	for key, value := range updates {
		column, ok := allowed[key]
		if !ok {
			r.log.Warnf("Ignoring unknown update field '%s' for user %d", key, id)
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCounter))
		args = append(args, value)
		argCounter++
	}
	if len(setClauses) == 0 {
		return r.GetUserByID(id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argCounter)

	user, err := scanUser(r.db.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with ID %d not found for update", id)
			return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to update user %d: %v", id, err)
		return nil, fmt.Errorf("could not update user: %w", err)
	}

	r.log.Infof("User %d updated successfully", id)
	return user, nil
}

func (r *postgresUserRepository) UpdatePassword(id int64, passwordHash string) error {
	result, err := r.db.Exec(`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		r.log.Errorf("Failed to update password for user %d: %v", id, err)
		return fmt.Errorf("could not update password: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read password update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Password updated for user %d", id)
	return nil
}

// AddPoints is a single atomic increment so concurrent delivery events on
// different orders never lose an award.
func (r *postgresUserRepository) AddPoints(id int64, delta int) error {
	result, err := r.db.Exec(`UPDATE users SET points = points + $1, updated_at = NOW() WHERE id = $2`, delta, id)
	if err != nil {
		r.log.Errorf("Failed to add %d points to user %d: %v", delta, id, err)
		return fmt.Errorf("could not add points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read points update result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("User %d not found for points award", id)
		return fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Awarded %d points to user %d", delta, id)
	return nil
}

func (r *postgresUserRepository) DeleteUser(id int64) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete user %d: %v", id, err)
		return fmt.Errorf("could not delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("User %d deleted", id)
	return nil
}
