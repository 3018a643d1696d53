package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/store"
)

type organizationsRepo struct {
	db dbtx
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Description, o.CreatedBy, o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	for _, userID := range o.MemberIDs {
		if _, err := r.AddMember(ctx, o.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	var o domain.Organization
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, created_at, updated_at
		FROM organizations WHERE id = ?`, id,
	).Scan(&o.ID, &o.Name, &o.Description, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}

	members, err := r.listMembers(ctx, id)
	if err != nil {
		return domain.Organization{}, err
	}
	o.MemberIDs = members
	return o, nil
}

func (r *organizationsRepo) ListOrganizationsForUser(ctx context.Context, userID string) ([]domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.description, o.created_by, o.created_at, o.updated_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = ?
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orgs {
		members, err := r.listMembers(ctx, orgs[i].ID)
		if err != nil {
			return nil, err
		}
		orgs[i].MemberIDs = members
	}
	return orgs, nil
}

func (r *organizationsRepo) UpdateOrganization(ctx context.Context, id, name, description string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?`, name, description, time.Now().UTC(), id)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *organizationsRepo) DeleteOrganization(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *organizationsRepo) AddMember(ctx context.Context, orgID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO organization_members (organization_id, user_id, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT (organization_id, user_id) DO NOTHING`, orgID, userID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *organizationsRepo) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM organization_members
		WHERE organization_id = ? AND user_id = ?`, orgID, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *organizationsRepo) listMembers(ctx context.Context, orgID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM organization_members
		WHERE organization_id = ?
		ORDER BY added_at, user_id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
