package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"taskguardian/internal/models"
)

var ErrDuplicateUsername = errors.New("username already exists")

// UserStore persists user records. Passwords arrive here already hashed.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(username, hashedPassword, role string) (models.User, error) {
	user := models.User{Username: username, Password: hashedPassword, Role: role}
	err := s.db.QueryRow(
		"INSERT INTO users (username, password, role) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
		username, hashedPassword, role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// 23505 is the Postgres unique violation code
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) GetByUsername(username string) (models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) GetByID(id int) (models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateRole overwrites the target user's role and returns the updated
// record. sql.ErrNoRows surfaces when the user does not exist.
func (s *UserStore) UpdateRole(id int, role string) (models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		`UPDATE users SET role = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING id, username, role, created_at, updated_at`,
		role, id,
	).Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
