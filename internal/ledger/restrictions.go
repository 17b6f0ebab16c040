package ledger

import (
	"context"
	"fmt"

	"github.com/cradoe/carvest/internal/models"
)

// SetWithdrawalLock flips the per-user withdrawal restriction. It takes
// effect for requests and approvals that start after it commits.
func (s *Service) SetWithdrawalLock(ctx context.Context, actor models.Actor, userID string, locked bool) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.lockUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	prior := user.CanWithdraw

	if err := s.db.User().SetCanWithdraw(ctx, tx, user.ID, !locked, now); err != nil {
		return nil, fmt.Errorf("set withdrawal lock: %w", err)
	}

	err = s.audit(ctx, tx, actor.ID, user.ID, models.AuditEntityUser, user.ID, models.AuditActionWithdrawalLock, map[string]any{
		"prior_can_withdraw": prior,
		"can_withdraw":       !locked,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal restriction changed",
		"admin_id", actor.ID,
		"user_id", user.ID,
		"prior_can_withdraw", prior,
		"can_withdraw", !locked,
	)

	user.CanWithdraw = !locked
	user.UpdatedAt.Time, user.UpdatedAt.Valid = now, true

	return user, nil
}
