package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/store"
	"github.com/tasmanlabs/orgauth/pkg/idx"
	"github.com/tasmanlabs/orgauth/pkg/slogx"
)

var (
	ErrDuplicateOrganization = errors.New("duplicate_organization")
	ErrNotOrganizationOwner  = errors.New("not_organization_owner")
)

// OrgService owns organization CRUD. Reads and updates are member-gated;
// deletion is reserved for the creator.
type OrgService struct {
	Store store.Store
}

// Create makes a new organization with the creator as its first member.
func (s *OrgService) Create(ctx context.Context, creatorID, name, description string) (domain.Organization, error) {
	l := slogx.FromContext(ctx)

	now := time.Now().UTC()
	org := domain.Organization{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		MemberIDs:   []string{creatorID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateOrganization
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Organization{}, err
	}

	l.Info("organization created",
		slog.String("org_id", org.ID),
		slog.String("created_by", creatorID),
	)
	return org, nil
}

// Get returns the organization, visible only to its members.
func (s *OrgService) Get(ctx context.Context, orgID, requesterID string) (domain.Organization, error) {
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, ErrOrganizationNotFound
		}
		return domain.Organization{}, err
	}
	if !org.HasMember(requesterID) {
		// Indistinguishable from absent: membership is not probeable.
		return domain.Organization{}, ErrOrganizationNotFound
	}
	return org, nil
}

// ListForUser returns every organization the user belongs to.
func (s *OrgService) ListForUser(ctx context.Context, userID string) ([]domain.Organization, error) {
	return s.Store.Organizations().ListOrganizationsForUser(ctx, userID)
}

// Update changes name and/or description. Empty fields keep their current
// value. Any member may update.
func (s *OrgService) Update(ctx context.Context, orgID, requesterID, name, description string) (domain.Organization, error) {
	l := slogx.FromContext(ctx)

	var updated domain.Organization
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, orgID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrganizationNotFound
			}
			return err
		}
		if !org.HasMember(requesterID) {
			return ErrOrganizationNotFound
		}

		if name == "" {
			name = org.Name
		}
		if description == "" {
			description = org.Description
		}

		if err := tx.Organizations().UpdateOrganization(ctx, orgID, name, description); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateOrganization
			}
			return err
		}

		updated, err = tx.Organizations().GetOrganizationByID(ctx, orgID)
		return err
	})
	if err != nil {
		return domain.Organization{}, err
	}

	l.Info("organization updated", slog.String("org_id", orgID))
	return updated, nil
}

// Delete removes the organization. Only the creator may delete.
func (s *OrgService) Delete(ctx context.Context, orgID, requesterID string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, orgID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrganizationNotFound
			}
			return err
		}
		if !org.HasMember(requesterID) {
			return ErrOrganizationNotFound
		}
		if org.CreatedBy != requesterID {
			return ErrNotOrganizationOwner
		}
		return tx.Organizations().DeleteOrganization(ctx, orgID)
	})
	if err != nil {
		return err
	}

	l.Info("organization deleted", slog.String("org_id", orgID))
	return nil
}
