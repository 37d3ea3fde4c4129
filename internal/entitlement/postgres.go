package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres persists credits in the user_credits table. Consume is a single
// conditional UPDATE, so concurrent runs for one user cannot double-charge.
type Postgres struct {
	db   *sql.DB
	seed int
}

var _ Gate = (*Postgres)(nil)

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (p ConnectionParams) connString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// NewPostgres opens the ledger database and creates the table if needed.
func NewPostgres(params ConnectionParams, seed int) (*Postgres, error) {
	db, err := sql.Open("postgres", params.connString())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if err := createTable(db); err != nil {
		return nil, fmt.Errorf("create user_credits failed: %w", err)
	}
	return &Postgres{db: db, seed: seed}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_credits (
			user_id    TEXT PRIMARY KEY,
			credits    INT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (p *Postgres) HasAllowance(ctx context.Context, userID string) (bool, error) {
	credits, err := p.creditsOrSeed(ctx, userID)
	if err != nil {
		return false, err
	}
	return credits > 0, nil
}

func (p *Postgres) Consume(ctx context.Context, userID string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE user_credits
		SET credits = credits - 1, updated_at = NOW()
		WHERE user_id = $1 AND credits > 0
	`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *Postgres) Grant(ctx context.Context, userID string, n int) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO user_credits (user_id, credits)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET credits = user_credits.credits + EXCLUDED.credits, updated_at = NOW()
	`, userID, n)
	return err
}

func (p *Postgres) Credits(ctx context.Context, userID string) (int, error) {
	return p.creditsOrSeed(ctx, userID)
}

// creditsOrSeed reads the balance, inserting the seed row for first-seen
// users. The ON CONFLICT guard keeps concurrent first reads from racing.
func (p *Postgres) creditsOrSeed(ctx context.Context, userID string) (int, error) {
	var credits int
	err := p.db.QueryRowContext(ctx,
		`SELECT credits FROM user_credits WHERE user_id = $1`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := p.db.ExecContext(ctx, `
			INSERT INTO user_credits (user_id, credits)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO NOTHING
		`, userID, p.seed); err != nil {
			return 0, err
		}
		err = p.db.QueryRowContext(ctx,
			`SELECT credits FROM user_credits WHERE user_id = $1`, userID).Scan(&credits)
	}
	if err != nil {
		return 0, err
	}
	return credits, nil
}

// Users lists every user id in the ledger.
func (p *Postgres) Users(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT user_id FROM user_credits ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Ping reports ledger connectivity for health checks.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
