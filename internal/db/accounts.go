package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campusboard/internal/models"
)

const accountColumns = `id, subject, email, display_name, role, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Subject,
		&a.Email,
		&a.DisplayName,
		&a.Role,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertAccount creates an account on first login and refreshes the
// profile fields afterwards. The role is never touched here.
func (d *DB) UpsertAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (subject, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
		RETURNING id, role, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		account.Subject,
		account.Email,
		account.DisplayName,
	).Scan(&account.ID, &account.Role, &account.CreatedAt, &account.UpdatedAt)
}

// GetAccountBySubject retrieves an account by its OIDC subject identifier.
func (d *DB) GetAccountBySubject(ctx context.Context, subject string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE subject = $1`
	return scanAccount(d.Pool.QueryRow(ctx, query, subject))
}

// GetAccountByID retrieves an account by its UUID.
func (d *DB) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(d.Pool.QueryRow(ctx, query, id))
}

// ListAccounts returns one page of accounts, optionally limited to a role.
func (d *DB) ListAccounts(ctx context.Context, role models.Role, page, limit int) ([]models.Account, int, error) {
	var total int
	if err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE ($1 = '' OR role = $1)`, string(role),
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, string(role), limit, models.PageOffset(page, limit))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, total, rows.Err()
}

// UpdateAccountRole changes an account's role.
func (d *DB) UpdateAccountRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Account, error) {
	query := `
		UPDATE accounts SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + accountColumns
	return scanAccount(d.Pool.QueryRow(ctx, query, role, id))
}

// GetModeratorEmails returns the addresses of every MOD and ADMIN.
func (d *DB) GetModeratorEmails(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT email FROM accounts
		WHERE role IN ($1, $2) AND email <> ''
		ORDER BY email
	`, models.RoleMod, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
