package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"paladin-core/internal/db"
	membershipdomain "paladin-core/internal/membership/domain"
	"paladin-core/internal/organisation/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organisation repository that uses the given db for persistence.
func NewPostgresRepository(database *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: database}
}

// GetOrganisation returns the organisation for id with its member count, or
// nil if not found. It returns an error only for database failures, not for
// missing rows.
func (r *PostgresRepository) GetOrganisation(ctx context.Context, id uuid.UUID) (*domain.Organisation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.name, o.plan, o.created_at,
		       (SELECT COUNT(*) FROM organisation_members m WHERE m.organisation_id = o.id)
		FROM organisations o WHERE o.id = $1`, id)
	return scanOrganisation(row)
}

// GetOrganisationByName returns the organisation with the given (unique) name,
// or nil if not found.
func (r *PostgresRepository) GetOrganisationByName(ctx context.Context, name string) (*domain.Organisation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.name, o.plan, o.created_at,
		       (SELECT COUNT(*) FROM organisation_members m WHERE m.organisation_id = o.id)
		FROM organisations o WHERE o.name = $1`, name)
	return scanOrganisation(row)
}

// CreateOrganisationWithOwner persists the organisation and its first OWNER
// membership inside one transaction. Both rows appear or neither does.
func (r *PostgresRepository) CreateOrganisationWithOwner(ctx context.Context, o *domain.Organisation, owner *membershipdomain.Membership) error {
	return db.WithTx(ctx, r.db, func(tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO organisations (id, name, plan, created_at)
			VALUES ($1, $2, $3, $4)`,
			o.ID, o.Name, string(o.Plan), o.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO organisation_members (organisation_id, user_id, user_role, member_since)
			VALUES ($1, $2, $3, $4)`,
			owner.OrgID, owner.UserID, string(owner.Role), owner.MemberSince)
		return err
	})
}

// UpdateOrganisation updates the organisation's name and plan.
func (r *PostgresRepository) UpdateOrganisation(ctx context.Context, o *domain.Organisation) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE organisations SET name = $2, plan = $3 WHERE id = $1`,
		o.ID, o.Name, string(o.Plan))
	return err
}

// DeleteOrganisationCascade deletes the organisation's invitations, then its
// memberships, then the organisation row, inside one transaction.
func (r *PostgresRepository) DeleteOrganisationCascade(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.db, func(tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM organisation_invites WHERE organisation_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM organisation_members WHERE organisation_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM organisations WHERE id = $1`, id)
		return err
	})
}

func scanOrganisation(row *sql.Row) (*domain.Organisation, error) {
	var o domain.Organisation
	var plan string
	err := row.Scan(&o.ID, &o.Name, &plan, &o.CreatedAt, &o.MemberCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Plan = domain.Plan(plan)
	return &o, nil
}
