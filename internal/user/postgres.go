package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yourusername/cet-portal/internal/user/migrations"
)

// PostgresRepository は PostgreSQL 上のアカウントストアです。
// メールアドレスの一意性は users.email の UNIQUE 制約で保証されます。
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository は既存のコネクションプールからリポジトリを作成します。
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres は DSN から接続を開き、マイグレーションを適用してリポジトリを返します。
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return NewPostgresRepository(db), nil
}

// Close はコネクションプールを閉じます。
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Create はアカウントを保存します。
func (r *PostgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	query :=
		`INSERT INTO users (fullname, email, phone, cet_roll_number, category, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	stored := *u
	stored.Email = NormalizeEmail(u.Email)
	if stored.Role == "" {
		stored.Role = RoleUser
	}

	err := r.db.QueryRowContext(ctx, query,
		stored.FullName, stored.Email, stored.Phone, stored.CETRollNumber,
		stored.Category, stored.PasswordHash, string(stored.Role),
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &stored, nil
}

// FindByEmail は正規化済みメールアドレスで検索します。
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query :=
		`SELECT id, fullname, email, phone, cet_roll_number, category, password_hash, role, created_at, updated_at
		 FROM users
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

// FindByID は ID で検索します。
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query :=
		`SELECT id, fullname, email, phone, cet_roll_number, category, password_hash, role, created_at, updated_at
		 FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*User, error) {
	u := &User{}
	var role string
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.CETRollNumber,
		&u.Category, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Role = Role(role)
	return u, nil
}

// ListAll は全アカウントを登録順に返します。password_hash は選択しません。
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*User, error) {
	query :=
		`SELECT id, fullname, email, phone, cet_roll_number, category, role, created_at, updated_at
		 FROM users
		 ORDER BY created_at, email
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var role string
		err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.CETRollNumber,
			&u.Category, &role, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		u.Role = Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}
