package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/notify"
	"github.com/tasmanlabs/orgauth/internal/auth/store"
	"github.com/tasmanlabs/orgauth/pkg/cryptox"
	"github.com/tasmanlabs/orgauth/pkg/idx"
	"github.com/tasmanlabs/orgauth/pkg/jwtx"
	"github.com/tasmanlabs/orgauth/pkg/slogx"
)

var (
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrNotAMember           = errors.New("not_a_member")
	ErrAlreadyMember        = errors.New("already_member")
	ErrInvalidInvitation    = errors.New("invalid_invitation")
)

// InviteService issues and redeems organization invitations. An invitation
// is a signed stateless token: subject = organization id, email = invitee.
// Bad-signature, expired and malformed tokens all collapse into
// ErrInvalidInvitation on the redeem path; a vanished organization and an
// existing membership are reported distinctly.
//
// The token carries no server-side record, so a still-valid token can be
// replayed until someone joins or it expires. Replays after the first join
// surface ErrAlreadyMember; true single-use semantics would need a registry
// entry per invitation.
type InviteService struct {
	Store    store.Store
	Invites  *jwtx.Codec
	Notifier notify.Notifier

	// AcceptURL is the public endpoint the mailed link points at.
	AcceptURL string
}

// Invite signs an invitation token for inviteeEmail to join the
// organization and mails the accept link. Only current members may invite,
// and inviting an existing member is rejected up front.
func (s *InviteService) Invite(ctx context.Context, orgID, inviterID, inviteeEmail string) (string, error) {
	l := slogx.FromContext(ctx)

	inviteeEmail = normalizeEmail(inviteeEmail)

	org, err := s.Store.Organizations().GetOrganizationByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrOrganizationNotFound
		}
		return "", err
	}

	if !org.HasMember(inviterID) {
		l.Warn("invite attempt by non-member",
			slog.String("org_id", orgID),
			slog.String("inviter_id", inviterID),
		)
		return "", ErrNotAMember
	}

	// Reject up front if the invitee already holds a membership. Their
	// account may not exist yet; that is fine, redemption provisions it.
	invitee, err := s.Store.Users().GetUserByEmail(ctx, inviteeEmail)
	if err == nil && org.HasMember(invitee.ID) {
		return "", ErrAlreadyMember
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	token, _, err := s.Invites.Issue(orgID, inviteeEmail, "")
	if err != nil {
		return "", err
	}

	msg := notify.InvitationMessage(inviteeEmail, org.Name, s.AcceptURL, token)
	if err := s.Notifier.Send(ctx, msg); err != nil {
		// The token is returned to the caller regardless; delivery is
		// best effort.
		l.Error("invitation mail failed", slog.Any("error", err))
	}

	l.Info("invitation issued",
		slog.String("org_id", orgID),
		slog.String("inviter_id", inviterID),
	)
	return token, nil
}

// Accept redeems an invitation token. If no account exists for the invited
// email, one is provisioned with a generated password which is then mailed
// to the invitee. Membership insertion has set semantics: concurrent
// redemptions of the same token produce exactly one membership and every
// later attempt gets ErrAlreadyMember.
func (s *InviteService) Accept(ctx context.Context, token string) (domain.User, domain.Organization, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Invites.Verify(token)
	if err != nil {
		return domain.User{}, domain.Organization{}, ErrInvalidInvitation
	}
	orgID, email := claims.Subject, normalizeEmail(claims.Email)
	if orgID == "" || email == "" {
		return domain.User{}, domain.Organization{}, ErrInvalidInvitation
	}

	var (
		user        domain.User
		org         domain.Organization
		provisioned bool
		password    string
	)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		org, err = tx.Organizations().GetOrganizationByID(ctx, orgID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// The signature is fine; the target is gone. Reported
				// distinctly from a bad token.
				return ErrOrganizationNotFound
			}
			return err
		}

		user, provisioned, password, err = s.getOrProvisionUser(ctx, tx, email)
		if err != nil {
			return err
		}

		added, err := tx.Organizations().AddMember(ctx, orgID, user.ID)
		if err != nil {
			return err
		}
		if !added {
			return ErrAlreadyMember
		}
		return nil
	})
	if err != nil {
		return domain.User{}, domain.Organization{}, err
	}

	if provisioned {
		// Mail only after the transaction committed, so a rollback never
		// leaks credentials for an account that does not exist.
		msg := notify.CredentialsMessage(email, org.Name, password)
		if err := s.Notifier.Send(ctx, msg); err != nil {
			l.Error("credentials mail failed", slog.Any("error", err))
		}
	}

	l.Info("invitation accepted",
		slog.String("org_id", orgID),
		slog.String("user_id", user.ID),
		slog.Bool("provisioned", provisioned),
	)
	return user, org, nil
}

// getOrProvisionUser returns the account for email, creating one with a
// generated password when absent.
func (s *InviteService) getOrProvisionUser(ctx context.Context, tx store.Tx, email string) (domain.User, bool, string, error) {
	user, err := tx.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, "", nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, false, "", err
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, false, "", err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, false, "", err
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:           idx.New().String(),
		Name:         email,
		Email:        email,
		PasswordHash: hash,
		AccessLevel:  domain.AccessLevelUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, false, "", err
	}
	return user, true, password, nil
}
