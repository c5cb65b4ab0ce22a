package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ReservationExpirationService sweeps reservations past their expiration
// date, expiring each one and releasing its remaining hold. The sweep is
// idempotent: a reservation already expired by an earlier or concurrent
// sweep is skipped without error.
type ReservationExpirationService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReservationExpirationService creates a new ReservationExpirationService
func NewReservationExpirationService(scope TransactionScope, logger *zap.Logger) *ReservationExpirationService {
	return &ReservationExpirationService{
		scope:  scope,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReservationExpirationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ExpirationStats summarizes one sweep
type ExpirationStats struct {
	TotalExpired    int       `json:"total_expired"`
	SuccessReleased int       `json:"success_released"`
	FailedReleases  int       `json:"failed_releases"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// ExpireSweep expires all reservations due at the given instant. Each
// reservation is processed in its own transaction so one failure does not
// block the rest of the sweep.
func (s *ReservationExpirationService) ExpireSweep(ctx context.Context, now time.Time) (*ExpirationStats, error) {
	stats := &ExpirationStats{ProcessedAt: now}

	var due []inventory.StockReservation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		due, err = repos.ReservationRepo().FindExpired(ctx, now)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to find expired reservations", zap.Error(err))
		return nil, err
	}

	stats.TotalExpired = len(due)
	if len(due) == 0 {
		return stats, nil
	}

	s.logger.Info("Expiring due reservations",
		zap.Int("count", len(due)),
		zap.Time("now", now),
	)

	for i := range due {
		reservation := &due[i]
		if err := s.expireOne(ctx, reservation, now); err != nil {
			stats.FailedReleases++
			s.logger.Error("Failed to expire reservation",
				zap.String("reservation_id", reservation.ID.String()),
				zap.String("reservation_number", reservation.ReservationNumber),
				zap.String("tenant_id", reservation.TenantID.String()),
				zap.Error(err),
			)
			continue
		}
		stats.SuccessReleased++
	}

	s.logger.Info("Reservation expiration sweep completed",
		zap.Int("total", stats.TotalExpired),
		zap.Int("released", stats.SuccessReleased),
		zap.Int("failed", stats.FailedReleases),
	)

	return stats, nil
}

func (s *ReservationExpirationService) expireOne(ctx context.Context, stale *inventory.StockReservation, now time.Time) error {
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Reload inside the transaction; another sweep may have won the race
		reservation, err := repos.ReservationRepo().FindByIDForTenant(ctx, stale.TenantID, stale.ID)
		if err != nil {
			return err
		}

		released, err := reservation.Expire(now)
		if err != nil {
			return err
		}
		if released.IsZero() {
			return nil
		}
		if err := repos.ReservationRepo().SaveWithLock(ctx, reservation); err != nil {
			return err
		}

		stock, err := repos.StockRepo().FindByKey(ctx, reservation.TenantID, reservationStockKey(reservation))
		if err != nil {
			return err
		}
		if err := stock.ReleaseReservation(released); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
			return err
		}

		events = append(drainEvents(stock), drainReservationEvents(reservation)...)
		return nil
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish expiration events", zap.Error(err))
		}
	}
	return nil
}
