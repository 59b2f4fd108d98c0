package userrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const userColumns = `id, email, full_name, address, password_hash, created_at`

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
	return scanUser(row)
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (repo *Repository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		zap.L().Error("can't check user existence", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, full_name, address, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Email, user.FullName, user.Address, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// EmailExists reports whether another account already uses email.
func (repo *Repository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`
	var exists bool
	if err := repo.db.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		zap.L().Error("can't check email usage", zap.Error(err))
		return false, err
	}
	return exists, nil
}

// UpdateProfile stores the email, name and address of user. It returns nil
// when the user no longer exists.
func (repo *Repository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET email = $1, full_name = $2, address = $3
		WHERE id = $4
		RETURNING ` + userColumns
	updated, err := scanUser(repo.db.QueryRow(ctx, query, user.Email, user.FullName, user.Address, user.ID))
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

func (repo *Repository) UpdatePassword(ctx context.Context, id int, passwordHash string) (bool, error) {
	tag, err := repo.db.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, id)
	if err != nil {
		zap.L().Error("can't update password", zap.Int("user_id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds users whose full name contains name, ordered by name. Sellers
// are users with at least one order line.
func (repo *Repository) Search(ctx context.Context, name string, limit int) ([]domain.UserMatch, error) {
	query := `
		SELECT u.id, u.full_name, u.email, u.address, u.created_at,
		       EXISTS (SELECT 1 FROM order_items oi WHERE oi.seller_id = u.id) AS is_seller
		FROM users u
		WHERE u.full_name ILIKE $1
		ORDER BY u.full_name, u.id
		LIMIT $2
	`
	rows, err := repo.db.Query(ctx, query, "%"+likeEscaper.Replace(name)+"%", limit)
	if err != nil {
		zap.L().Error("can't search users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.UserMatch, 0)
	for rows.Next() {
		var m domain.UserMatch
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Address, &m.CreatedAt, &m.IsSeller); err != nil {
			zap.L().Error("can't scan user search row", zap.Error(err))
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate user search rows", zap.Error(err))
		return nil, err
	}
	return matches, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.Address, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}
