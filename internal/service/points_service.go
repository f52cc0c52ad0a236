// FILE: internal/service/points_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pagecraft-be/internal/config"
	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/pkg/logger"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/pkg/events"
	pktNats "pagecraft-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

type IPointsService interface {
	GetBalanceStatus(ctx context.Context, userId uuid.UUID) (*dto.BalanceStatusResponse, error)
	GetValidPoints(ctx context.Context, userId uuid.UUID) (int64, error)
	GetExpiringSoon(ctx context.Context, userId uuid.UUID, horizon time.Duration) (*dto.ExpiringSoonSummary, error)
	GetBalances(ctx context.Context, userId uuid.UUID, includeExpired bool) (*dto.BalanceListResponse, error)
	GetTransactions(ctx context.Context, userId uuid.UUID, page int, perPage int, txType string) (*dto.TransactionListResponse, error)
	GetConfig() *dto.PointsConfigResponse
	CanConsume(ctx context.Context, userId uuid.UUID, required int64) (*dto.QuotaCheckResponse, error)
	Consume(ctx context.Context, userId uuid.UUID, amount int64, description string) (*dto.ConsumeResult, error)
}

const (
	consumeMaxRetries   = 3
	consumeRetryBackoff = 50 * time.Millisecond
)

type pointsService struct {
	uowFactory     unitofwork.RepositoryFactory
	cfg            config.PointsConfig
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewPointsService(
	uowFactory unitofwork.RepositoryFactory,
	cfg config.PointsConfig,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IPointsService {
	return &pointsService{
		uowFactory:     uowFactory,
		cfg:            cfg,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
	}
}

// pointsPerPage never reports less than one point per page, so the
// can-generate division stays defined even with a broken config.
func (s *pointsService) pointsPerPage() int64 {
	if s.cfg.PointsPerPage < 1 {
		return 1
	}
	return s.cfg.PointsPerPage
}

func (s *pointsService) GetValidPoints(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.PointRepository().SumValidRemaining(ctx, userId, time.Now())
}

func (s *pointsService) GetExpiringSoon(ctx context.Context, userId uuid.UUID, horizon time.Duration) (*dto.ExpiringSoonSummary, error) {
	if horizon <= 0 {
		horizon = entity.ExpiringSoonWindow
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	expiring, err := uow.PointRepository().FindBatches(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ExpiringWithin{Now: now, Window: horizon},
		specification.OrderBy{Field: "expires_at"},
	)
	if err != nil {
		return nil, err
	}
	if len(expiring) == 0 {
		return nil, nil
	}

	summary := &dto.ExpiringSoonSummary{
		EarliestExpire: *expiring[0].ExpiresAt,
	}
	for _, b := range expiring {
		summary.Points += b.Remaining
	}
	summary.Days = daysUntil(now, summary.EarliestExpire)
	return summary, nil
}

// daysUntil reports whole days until t, rounding up.
func daysUntil(now, t time.Time) int {
	d := t.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (s *pointsService) GetBalanceStatus(ctx context.Context, userId uuid.UUID) (*dto.BalanceStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	valid, err := uow.PointRepository().SumValidRemaining(ctx, userId, time.Now())
	if err != nil {
		return nil, err
	}

	expiring, err := s.GetExpiringSoon(ctx, userId, entity.ExpiringSoonWindow)
	if err != nil {
		return nil, err
	}

	perPage := s.pointsPerPage()
	return &dto.BalanceStatusResponse{
		ValidPoints:      valid,
		Tier:             string(user.Tier),
		IsAdmin:          user.IsAdmin(),
		ExpiringSoon:     expiring,
		PointsPerPage:    perPage,
		CanGeneratePages: valid / perPage,
	}, nil
}

func (s *pointsService) GetBalances(ctx context.Context, userId uuid.UUID, includeExpired bool) (*dto.BalanceListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	batches, err := uow.PointRepository().FindBatches(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.BalanceListResponse{
		Balances: make([]dto.BalanceItem, 0, len(batches)),
	}
	for _, b := range batches {
		valid := b.IsValid(now)
		if valid {
			res.ValidPoints += b.Remaining
		}
		if !valid && !includeExpired {
			continue
		}
		res.Balances = append(res.Balances, dto.BalanceItem{
			Id:             b.Id,
			Amount:         b.Amount,
			Remaining:      b.Remaining,
			Source:         string(b.Source),
			SourceNote:     b.SourceNote,
			ExpiresAt:      b.ExpiresAt,
			IsExpired:      b.IsExpired(now),
			IsExpiringSoon: b.IsExpiringSoon(now),
			CreatedAt:      b.CreatedAt,
		})
	}
	return res, nil
}

func (s *pointsService) GetTransactions(ctx context.Context, userId uuid.UUID, page int, perPage int, txType string) (*dto.TransactionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PointRepository()

	filters := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
	}
	if txType != "" {
		filters = append(filters, specification.ByTransactionType{Type: txType})
	}

	total, err := repo.CountTransactions(ctx, filters...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	txs, err := repo.FindTransactions(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	res := &dto.TransactionListResponse{
		Transactions: make([]dto.TransactionItem, 0, len(txs)),
		Total:        total,
		Page:         page,
		PerPage:      perPage,
	}
	for _, t := range txs {
		res.Transactions = append(res.Transactions, dto.TransactionItem{
			Id:           t.Id,
			Type:         string(t.Type),
			Amount:       t.Amount,
			BalanceAfter: t.BalanceAfter,
			BatchId:      t.BatchId,
			Description:  t.Description,
			CreatedAt:    t.CreatedAt,
		})
	}
	return res, nil
}

func (s *pointsService) GetConfig() *dto.PointsConfigResponse {
	return &dto.PointsConfigResponse{
		PointsPerPage:                 s.pointsPerPage(),
		RegisterBonusPoints:           s.cfg.RegisterBonusPoints,
		RegisterBonusExpireDays:       s.cfg.RegisterBonusExpireDays,
		ReferralInviterRegisterPoints: s.cfg.ReferralInviterRegisterPoints,
		ReferralInviteeRegisterPoints: s.cfg.ReferralInviteeRegisterPoints,
		ReferralInviterUpgradePoints:  s.cfg.ReferralInviterUpgradePoints,
	}
}

// CanConsume is advisory. The answer can go stale before the caller acts on
// it; Consume remains the authority.
func (s *pointsService) CanConsume(ctx context.Context, userId uuid.UUID, required int64) (*dto.QuotaCheckResponse, error) {
	if required < 0 {
		required = 0
	}

	valid, err := s.GetValidPoints(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.QuotaCheckResponse{
		Allowed:        valid >= required,
		RequiredPoints: required,
		ValidPoints:    valid,
	}
	if !res.Allowed {
		res.Reason = ErrInsufficientPoints.Error()
	}
	return res, nil
}

// Consume deducts amount across the user's batches, soonest expiry first.
// All-or-nothing: when the spendable total is short, nothing is written and
// the result carries Ok=false.
func (s *pointsService) Consume(ctx context.Context, userId uuid.UUID, amount int64, description string) (*dto.ConsumeResult, error) {
	if amount <= 0 {
		// Charging nothing always succeeds and writes nothing.
		valid, err := s.GetValidPoints(ctx, userId)
		if err != nil {
			return nil, err
		}
		return &dto.ConsumeResult{Ok: true, RemainingValid: valid}, nil
	}

	var result *dto.ConsumeResult
	backoff := retry.WithMaxRetries(consumeMaxRetries, retry.NewExponential(consumeRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.consumeOnce(ctx, userId, amount, description)
		if err != nil {
			if isRetriableTxError(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if isRetriableTxError(err) {
			// Retries exhausted under lock contention. Fail closed: the
			// caller sees the same outcome as an insufficient balance.
			s.logger.Warn("points", "deduction retries exhausted", map[string]interface{}{
				"user_id": userId.String(),
				"amount":  amount,
				"error":   err.Error(),
			})
			return &dto.ConsumeResult{Ok: false, Message: ErrInsufficientPoints.Error()}, nil
		}
		return nil, err
	}
	return result, nil
}

func (s *pointsService) consumeOnce(ctx context.Context, userId uuid.UUID, amount int64, description string) (*dto.ConsumeResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.PointRepository()
	now := time.Now()

	// 1. Lock the spendable batches in drain order
	batches, err := repo.FindValidBatchesForUpdate(ctx, userId, now)
	if err != nil {
		return nil, err
	}

	var available int64
	for _, b := range batches {
		available += b.Remaining
	}
	if available < amount {
		// Rollback via defer; nothing was written.
		return &dto.ConsumeResult{
			Ok:             false,
			RemainingValid: available,
			Message:        ErrInsufficientPoints.Error(),
		}, nil
	}

	// 2. Drain batches until the amount is covered, one expense row each
	left := amount
	for _, b := range batches {
		if left == 0 {
			break
		}
		take := b.Remaining
		if take > left {
			take = left
		}

		affected, err := repo.DrainBatch(ctx, b.Id, take, b.Remaining)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, ErrIntegrity
		}

		tx := &entity.PointTransaction{
			Id:           uuid.New(),
			UserId:       userId,
			Type:         entity.PointTransactionExpense,
			Amount:       take,
			BalanceAfter: b.Remaining - take,
			BatchId:      &b.Id,
			Description:  description,
			CreatedAt:    now,
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			return nil, err
		}
		left -= take
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 3. Emit the consumed event (best effort, after commit)
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypePointsConsumed,
			Data: map[string]interface{}{
				"user_id":     userId,
				"amount":      amount,
				"remaining":   available - amount,
				"description": description,
				"occurred_at": now,
			},
			OccurredAt: now,
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish points consumed event: %v\n", err)
		}
	}

	return &dto.ConsumeResult{
		Ok:             true,
		PointsCharged:  amount,
		RemainingValid: available - amount,
	}, nil
}

// isRetriableTxError reports whether the transaction lost a serialization
// or deadlock race and is worth retrying.
func isRetriableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}
