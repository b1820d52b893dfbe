package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/academy-auth/internal/domain"
)

const uniqueViolation = "23505"

var (
	// ErrSubjectNotFound is returned when no subject matches the lookup.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrEmailTaken is returned when inserting a subject whose email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotConfigured is returned when the store has no database behind it.
	ErrNotConfigured = errors.New("credential store not configured")
)

// SubjectRepository defines persistence access for subjects.
// Emails are expected to be normalized by the caller.
type SubjectRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Subject, error)
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	Insert(ctx context.Context, subject *domain.Subject) error
	UpdateSecretHash(ctx context.Context, id, hash string) error
}

type subjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository returns a Postgres-backed implementation.
func NewSubjectRepository(pool *pgxpool.Pool) SubjectRepository {
	return &subjectRepository{pool: pool}
}

func (r *subjectRepository) Insert(ctx context.Context, subject *domain.Subject) error {
	if r.pool == nil {
		return ErrNotConfigured
	}
	const query = `
        INSERT INTO subjects (id, email, secret_hash, roles)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		subject.ID,
		subject.Email,
		subject.SecretHash,
		rolesToStrings(subject.Roles),
	).Scan(&subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *subjectRepository) UpdateSecretHash(ctx context.Context, id, hash string) error {
	if r.pool == nil {
		return ErrNotConfigured
	}
	const query = `
        UPDATE subjects SET secret_hash=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	const query = `
        SELECT id, email, secret_hash, roles, created_at, updated_at
        FROM subjects WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *subjectRepository) FindByEmail(ctx context.Context, email string) (*domain.Subject, error) {
	const query = `
        SELECT id, email, secret_hash, roles, created_at, updated_at
        FROM subjects WHERE email=$1`
	return r.scanOne(ctx, query, email)
}

func (r *subjectRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Subject, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	var (
		subject domain.Subject
		roles   []string
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&subject.ID,
		&subject.Email,
		&subject.SecretHash,
		&roles,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	subject.Roles = stringsToRoles(roles)
	return &subject, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(values []string) []domain.Role {
	out := make([]domain.Role, len(values))
	for i, v := range values {
		out[i] = domain.Role(v)
	}
	return out
}
