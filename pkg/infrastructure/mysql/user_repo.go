package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"shop/pkg/domain/model"
)

type userRow struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) model.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *userRepository) Create(user *model.User) error {
	_, err := r.db.Exec(
		`INSERT INTO users (id, email, hashed_password, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.HashedPassword, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if isDuplicateEntry(err, "uniq_users_email") {
		return model.ErrEmailTaken
	}
	return errors.Wrap(err, "insert user")
}

func (r *userRepository) Find(id uuid.UUID) (*model.User, error) {
	var row userRow
	err := r.db.Get(&row, `SELECT id, email, hashed_password, is_active, created_at, updated_at FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}
	return row.toModel(), nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var row userRow
	err := r.db.Get(&row, `SELECT id, email, hashed_password, is_active, created_at, updated_at FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user by email")
	}
	return row.toModel(), nil
}

func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(
		`UPDATE users SET email = ?, hashed_password = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		user.Email, user.HashedPassword, user.IsActive, user.UpdatedAt, user.ID,
	)
	return errors.Wrap(err, "update user")
}
