package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// uniqueViolationConstraint はPostgreSQLのユニーク制約違反(23505)の場合に
// 違反した制約名を返す。
func uniqueViolationConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, COALESCE(email, ''), COALESCE(password_hash, ''),
	COALESCE(telegram_id, 0), COALESCE(telegram_username, ''),
	is_active, is_admin, created_at, updated_at`

// scanUser は1行分のユーザーレコードをスキャンする。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.TelegramID, &user.TelegramUsername,
		&user.IsActive, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByTelegramID はTelegram IDでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by telegram ID: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成し、採番されたIDと作成時刻をuserに反映する。
// 空文字列・ゼロ値のオプションフィールドはNULLとして保存し、
// 部分的なユニーク制約と両立させる。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, telegram_id, telegram_username, is_active, is_admin)
		 VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, 0), NULLIF($4, ''), $5, $6)
		 RETURNING id, created_at, updated_at`,
		user.Email, user.PasswordHash, user.TelegramID, user.TelegramUsername,
		user.IsActive, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if constraint, ok := uniqueViolationConstraint(err); ok {
		switch constraint {
		case "users_email_key":
			return model.NewEmailConflictError()
		case "users_telegram_id_key":
			return model.NewTelegramConflictError()
		}
		return fmt.Errorf("unexpected unique violation on %s: %w", constraint, err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Update はユーザー情報を更新する。
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET email = NULLIF($2, ''), password_hash = NULLIF($3, ''),
		     telegram_id = NULLIF($4, 0), telegram_username = NULLIF($5, ''),
		     is_active = $6, is_admin = $7, updated_at = now()
		 WHERE id = $1`,
		user.ID, user.Email, user.PasswordHash,
		user.TelegramID, user.TelegramUsername,
		user.IsActive, user.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %d", user.ID)
	}

	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
