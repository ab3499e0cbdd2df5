package repository

import (
	"database/sql"
	"freelance-auth-api/model"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdatePassword(q Querier, userID int, passwordHash string) error
}

type UserRepository struct {
	DB Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (email, password_hash, role, name, company, rate)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.DB.QueryRow(query, user.Email, user.Password, user.Role, user.Name, user.Company, user.Rate).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, password_hash, role, name, company, rate, created_at FROM users WHERE email=$1`
	err := r.DB.QueryRow(query, email).
		Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.Name, &user.Company, &user.Rate, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(id int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, password_hash, role, name, company, rate, created_at FROM users WHERE id=$1`
	err := r.DB.QueryRow(query, id).
		Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.Name, &user.Company, &user.Rate, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword sets a new password hash for the user. It takes a Querier
// so the reset flow can run it inside the same transaction that marks the
// reset token used.
func (r *UserRepository) UpdatePassword(q Querier, userID int, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	res, err := q.Exec(query, passwordHash, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
