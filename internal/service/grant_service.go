// FILE: internal/service/grant_service.go
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pagecraft-be/internal/config"
	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/pkg/mailer"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/pkg/events"
	pktNats "pagecraft-be/pkg/nats"

	"github.com/google/uuid"
)

type IGrantService interface {
	GrantRegisterBonus(ctx context.Context, userId uuid.UUID) (*entity.PointBatch, error)
	GrantAdmin(ctx context.Context, adminId uuid.UUID, req *dto.GrantPointsRequest) (*dto.GrantPointsResponse, error)
	RedeemCode(ctx context.Context, userId uuid.UUID, code string) (*dto.RedeemResponse, error)
	GenerateCodes(ctx context.Context, adminId uuid.UUID, req *dto.GenerateCodesRequest) (*dto.GenerateCodesResponse, error)
	ListCodes(ctx context.Context, batchNo string, page int, perPage int) (*dto.RechargeCodeListResponse, error)
}

type grantService struct {
	uowFactory     unitofwork.RepositoryFactory
	cfg            config.PointsConfig
	eventPublisher *pktNats.Publisher
	emailService   mailer.IEmailService
}

func NewGrantService(uowFactory unitofwork.RepositoryFactory, cfg config.PointsConfig, eventPublisher *pktNats.Publisher, emailService mailer.IEmailService) IGrantService {
	return &grantService{
		uowFactory:     uowFactory,
		cfg:            cfg,
		eventPublisher: eventPublisher,
		emailService:   emailService,
	}
}

// voucherAlphabet drops 0/O/1/I so codes survive being read over the phone.
const voucherAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

func generateVoucherCode() (string, error) {
	groups := make([]string, 3)
	for g := range groups {
		chars := make([]byte, 4)
		for i := range chars {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(voucherAlphabet))))
			if err != nil {
				return "", err
			}
			chars[i] = voucherAlphabet[n.Int64()]
		}
		groups[g] = string(chars)
	}
	return "PC-" + strings.Join(groups, "-"), nil
}

// expiryFromDays turns a day count into an absolute deadline. Zero or
// negative days means no deadline.
func expiryFromDays(now time.Time, days int) *time.Time {
	if days <= 0 {
		return nil
	}
	t := now.Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

// grantPoints writes an income batch plus its matching ledger line inside an
// already-begun unit of work. The caller owns commit and rollback. SourceId
// ties the batch back to whatever caused it (code, referral record, order).
func grantPoints(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, points int64, source entity.PointSource, sourceId *uuid.UUID, note string, expiresAt *time.Time) (*entity.PointBatch, error) {
	if points <= 0 {
		return nil, ErrInvalidGrant
	}

	now := time.Now()
	batch := &entity.PointBatch{
		Id:         uuid.New(),
		UserId:     userId,
		Amount:     points,
		Remaining:  points,
		Source:     source,
		SourceId:   sourceId,
		SourceNote: note,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
	}

	repo := uow.PointRepository()
	if err := repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	tx := &entity.PointTransaction{
		Id:           uuid.New(),
		UserId:       userId,
		Type:         entity.PointTransactionIncome,
		Amount:       points,
		BalanceAfter: batch.Remaining,
		BatchId:      &batch.Id,
		Description:  note,
		CreatedAt:    now,
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return batch, nil
}

func (s *grantService) publishGranted(ctx context.Context, batch *entity.PointBatch) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type: events.TypePointsGranted,
		Data: map[string]interface{}{
			"user_id":    batch.UserId,
			"batch_id":   batch.Id,
			"points":     batch.Amount,
			"source":     string(batch.Source),
			"expires_at": batch.ExpiresAt,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		fmt.Printf("[WARN] Failed to publish points granted event: %v\n", err)
	}
}

func (s *grantService) GrantRegisterBonus(ctx context.Context, userId uuid.UUID) (*entity.PointBatch, error) {
	if s.cfg.RegisterBonusPoints <= 0 {
		// Bonus disabled, nothing to grant.
		return nil, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	batch, err := grantPoints(ctx, uow, userId,
		s.cfg.RegisterBonusPoints,
		entity.PointSourceRegisterBonus,
		nil,
		"register bonus",
		expiryFromDays(time.Now(), s.cfg.RegisterBonusExpireDays),
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishGranted(ctx, batch)
	return batch, nil
}

func (s *grantService) GrantAdmin(ctx context.Context, adminId uuid.UUID, req *dto.GrantPointsRequest) (*dto.GrantPointsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	note := req.Note
	if note == "" {
		note = "admin grant"
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// SourceId carries the granting admin so the batch stays attributable.
	batch, err := grantPoints(ctx, uow, req.UserId,
		req.Points,
		entity.PointSourceAdminGrant,
		&adminId,
		note,
		expiryFromDays(time.Now(), req.ExpireDays),
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishGranted(ctx, batch)
	return &dto.GrantPointsResponse{
		BatchId:   batch.Id,
		Points:    batch.Amount,
		ExpiresAt: batch.ExpiresAt,
	}, nil
}

func (s *grantService) RedeemCode(ctx context.Context, userId uuid.UUID, code string) (*dto.RedeemResponse, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	codeRepo := uow.RechargeCodeRepository()
	now := time.Now()

	// 1. Look the voucher up and vet it
	rc, err := codeRepo.FindOne(ctx, specification.ByCode{Code: normalized})
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, ErrCodeInvalid
	}
	if rc.IsRedeemed() {
		return nil, ErrCodeAlreadyUsed
	}
	if rc.IsExpired(now) {
		return nil, ErrCodeExpired
	}

	// 2. Claim it. Zero rows means a concurrent redemption got there first.
	affected, err := codeRepo.MarkUsed(ctx, rc.Id, userId, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCodeAlreadyUsed
	}

	// 3. Grant the points it carries
	batch, err := grantPoints(ctx, uow, userId,
		rc.Points,
		entity.PointSourceRechargeCode,
		&rc.Id,
		fmt.Sprintf("recharge code %s", rc.BatchNo),
		expiryFromDays(now, rc.PointsExpireDays),
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		event := events.BaseEvent{
			Type: events.TypeCodeRedeemed,
			Data: map[string]interface{}{
				"user_id":  userId,
				"code_id":  rc.Id,
				"batch_no": rc.BatchNo,
				"points":   rc.Points,
			},
			OccurredAt: now,
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish code redeemed event: %v\n", err)
		}
	}

	valid, err := s.uowFactory.NewUnitOfWork(ctx).PointRepository().SumValidRemaining(ctx, userId, time.Now())
	if err != nil {
		return nil, err
	}

	return &dto.RedeemResponse{
		PointsGranted: batch.Amount,
		ExpiresAt:     batch.ExpiresAt,
		ValidPoints:   valid,
	}, nil
}

func (s *grantService) GenerateCodes(ctx context.Context, adminId uuid.UUID, req *dto.GenerateCodesRequest) (*dto.GenerateCodesResponse, error) {
	now := time.Now()

	batchNo := req.BatchNo
	if batchNo == "" {
		batchNo = fmt.Sprintf("BATCH-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
	}

	expiresAt := expiryFromDays(now, req.ExpireDays)

	codes := make([]*entity.RechargeCode, 0, req.Count)
	plain := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		codeStr, err := generateVoucherCode()
		if err != nil {
			return nil, err
		}
		codes = append(codes, &entity.RechargeCode{
			Id:               uuid.New(),
			Code:             codeStr,
			Points:           req.Points,
			BatchNo:          batchNo,
			ExpiresAt:        expiresAt,
			PointsExpireDays: req.PointsExpireDays,
			CreatedBy:        adminId,
			CreatedAt:        now,
		})
		plain = append(plain, codeStr)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.RechargeCodeRepository().CreateMany(ctx, codes); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Email the plaintext codes to the admin who cut the batch. The codes
	// are stored server-side too, so a lost mail is not a lost batch.
	if s.emailService != nil {
		admin, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: adminId})
		if err == nil && admin != nil {
			if err := s.emailService.SendRechargeCodes(admin.Email, batchNo, plain); err != nil {
				fmt.Printf("[WARN] Failed to email recharge codes for batch %s: %v\n", batchNo, err)
			}
		}
	}

	return &dto.GenerateCodesResponse{BatchNo: batchNo, Codes: plain}, nil
}

func (s *grantService) ListCodes(ctx context.Context, batchNo string, page int, perPage int) (*dto.RechargeCodeListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 200 {
		perPage = 200
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.RechargeCodeRepository()

	filters := []specification.Specification{}
	if batchNo != "" {
		filters = append(filters, specification.ByBatchNo{BatchNo: batchNo})
	}

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	rcs, err := repo.FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	res := &dto.RechargeCodeListResponse{
		Codes:   make([]dto.RechargeCodeItem, 0, len(rcs)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
	for _, rc := range rcs {
		res.Codes = append(res.Codes, dto.RechargeCodeItem{
			Id:        rc.Id,
			Code:      rc.Code,
			Points:    rc.Points,
			BatchNo:   rc.BatchNo,
			ExpiresAt: rc.ExpiresAt,
			UsedBy:    rc.UsedBy,
			UsedAt:    rc.UsedAt,
			CreatedAt: rc.CreatedAt,
		})
	}
	return res, nil
}
