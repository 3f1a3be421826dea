package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"paladin-core/internal/db"
	"paladin-core/internal/invitation/domain"
	membershipdomain "paladin-core/internal/membership/domain"
)

const inviteColumns = `id, organisation_id, email, user_role, invite_code, invited_by, status, expires_at, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an invitation repository that uses the given db for persistence.
func NewPostgresRepository(database *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: database}
}

// GetByToken returns the invitation holding the given token, or nil if not found.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM organisation_invites WHERE invite_code = $1`, token)
	return scanInvitation(row)
}

// GetByID returns the invitation for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM organisation_invites WHERE id = $1`, id)
	return scanInvitation(row)
}

// FindPendingByOrgAndEmail returns the PENDING invitation for the pair, or nil.
func (r *PostgresRepository) FindPendingByOrgAndEmail(ctx context.Context, orgID uuid.UUID, email string) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM organisation_invites
		 WHERE organisation_id = $1 AND email = $2 AND status = $3`,
		orgID, email, string(domain.StatusPending))
	return scanInvitation(row)
}

// ListByEmail returns all invitations addressed to email, newest first.
func (r *PostgresRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM organisation_invites WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvitations(rows)
}

// ListByOrg returns all invitations for the organisation, newest first.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM organisation_invites WHERE organisation_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvitations(rows)
}

// CreateInvitation persists the invitation. The invitation must have ID and token set.
func (r *PostgresRepository) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organisation_invites (id, organisation_id, email, user_role, invite_code, invited_by, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.OrgID, inv.Email, string(inv.Role), inv.Token, inv.InvitedBy,
		string(inv.Status), inv.ExpiresAt, inv.CreatedAt)
	return err
}

// TransitionStatus conditionally moves the invitation out of PENDING.
func (r *PostgresRepository) TransitionStatus(ctx context.Context, id uuid.UUID, to domain.Status) (bool, error) {
	return transitionStatus(ctx, r.db, id, to)
}

// AcceptWithMembership flips the invitation to ACCEPTED and inserts the
// membership inside one transaction. When the conditional update loses a race
// (row no longer PENDING) the transaction is abandoned and ok is false.
func (r *PostgresRepository) AcceptWithMembership(ctx context.Context, id uuid.UUID, m *membershipdomain.Membership) (bool, error) {
	var ok bool
	err := db.WithTx(ctx, r.db, func(tx db.DBTX) error {
		var err error
		ok, err = transitionStatus(ctx, tx, id, domain.StatusAccepted)
		if err != nil || !ok {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO organisation_members (organisation_id, user_id, user_role, member_since)
			VALUES ($1, $2, $3, $4)`,
			m.OrgID, m.UserID, string(m.Role), m.MemberSince)
		return err
	})
	return ok, err
}

// DeleteInvitation removes the invitation row; ok reports whether a row existed.
func (r *PostgresRepository) DeleteInvitation(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM organisation_invites WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func transitionStatus(ctx context.Context, q db.DBTX, id uuid.UUID, to domain.Status) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE organisation_invites SET status = $2
		WHERE id = $1 AND status = $3`,
		id, string(to), string(domain.StatusPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	var role, status string
	err := row.Scan(&inv.ID, &inv.OrgID, &inv.Email, &role, &inv.Token,
		&inv.InvitedBy, &status, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	inv.Role = membershipdomain.Role(role)
	inv.Status = domain.Status(status)
	return &inv, nil
}

func scanInvitations(rows *sql.Rows) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		var role, status string
		if err := rows.Scan(&inv.ID, &inv.OrgID, &inv.Email, &role, &inv.Token,
			&inv.InvitedBy, &status, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Role = membershipdomain.Role(role)
		inv.Status = domain.Status(status)
		out = append(out, &inv)
	}
	return out, rows.Err()
}
