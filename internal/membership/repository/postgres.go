package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"paladin-core/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(database *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: database}
}

// GetMembership returns the membership for the given org and user, or nil if
// not found. It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT organisation_id, user_id, user_role, member_since
		FROM organisation_members WHERE organisation_id = $1 AND user_id = $2`, orgID, userID)
	var m domain.Membership
	var role string
	if err := row.Scan(&m.OrgID, &m.UserID, &role, &m.MemberSince); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}

// ListMembershipsByOrg returns all memberships for the given org.
func (r *PostgresRepository) ListMembershipsByOrg(ctx context.Context, orgID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT organisation_id, user_id, user_role, member_since
		FROM organisation_members WHERE organisation_id = $1 ORDER BY member_since`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// ListMembershipsByUser returns all memberships held by the given user.
func (r *PostgresRepository) ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT organisation_id, user_id, user_role, member_since
		FROM organisation_members WHERE user_id = $1 ORDER BY member_since`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// UpdateRole sets the membership's role and returns the updated membership,
// or nil if the membership does not exist.
func (r *PostgresRepository) UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role domain.Role) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE organisation_members SET user_role = $3
		WHERE organisation_id = $1 AND user_id = $2
		RETURNING organisation_id, user_id, user_role, member_since`, orgID, userID, string(role))
	var m domain.Membership
	var got string
	if err := row.Scan(&m.OrgID, &m.UserID, &got, &m.MemberSince); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Role = domain.Role(got)
	return &m, nil
}

// DeleteMembership removes the membership row. Deleting a missing row is not an error.
func (r *PostgresRepository) DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM organisation_members WHERE organisation_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

func scanMemberships(rows *sql.Rows) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		var role string
		if err := rows.Scan(&m.OrgID, &m.UserID, &role, &m.MemberSince); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		out = append(out, &m)
	}
	return out, rows.Err()
}
