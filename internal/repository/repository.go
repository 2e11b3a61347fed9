package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"user-management-service/internal/entity"
)

// ErrNotFound is returned when no row matches the given id.
var ErrNotFound = errors.New("user not found")

// updatableColumns is the only set of identifiers ever written into an UPDATE statement.
var updatableColumns = []string{"first_name", "last_name", "email", "phone_number", "role", "password_hash"}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

// ListUsers returns every user in store order.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*entity.User, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query := `SELECT id, first_name, last_name, email, phone_number, role FROM user_management`
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user := &entity.User{}
		err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PhoneNumber, &user.Role)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	user := &entity.User{}
	query := `SELECT id, first_name, last_name, email, phone_number, role FROM user_management WHERE id = ?`
	err = conn.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PhoneNumber, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUser inserts the user and sets user.ID to the store-assigned id.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO user_management (first_name, last_name, email, phone_number, password_hash, role) VALUES (?, ?, ?, ?, ?, ?)`

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.PasswordHash, user.Role)
		if err != nil {
			return err
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		user.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser writes the allow-listed columns present in fields to the row with the given id.
// Keys outside the allow-list are ignored. It returns the columns that were written.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, fields map[string]string) ([]string, error) {
	query, args, columns := buildUpdate(id, fields)
	if len(columns) == 0 {
		return nil, errors.New("no columns to update")
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		return execAffectingRow(ctx, tx, query, args...)
	})
	if err != nil {
		return nil, err
	}

	return columns, nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM user_management WHERE id = ?`
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return execAffectingRow(ctx, tx, query, id)
	})
}

// withTx runs fn in a transaction on a connection held only for this call.
// The transaction is rolled back when fn or the commit fails.
func (r *UserRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return err
	}

	return nil
}

// execAffectingRow executes the statement and returns ErrNotFound when it matched nothing.
func execAffectingRow(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func buildUpdate(id int64, fields map[string]string) (string, []interface{}, []string) {
	var (
		assignments []string
		args        []interface{}
		columns     []string
	)
	for _, column := range updatableColumns {
		value, ok := fields[column]
		if !ok {
			continue
		}
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
		columns = append(columns, column)
	}

	query := `UPDATE user_management SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
	args = append(args, id)
	return query, args, columns
}
