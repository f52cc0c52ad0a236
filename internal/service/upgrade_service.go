// FILE: internal/service/upgrade_service.go
package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"pagecraft-be/pkg/events"
	pktNats "pagecraft-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type IUpgradeService interface {
	Checkout(ctx context.Context, userId uuid.UUID, req *dto.UpgradeCheckoutRequest) (*dto.UpgradeCheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	GetStatus(ctx context.Context, userId uuid.UUID) (*dto.UpgradeStatusResponse, error)
}

type upgradeService struct {
	uowFactory      unitofwork.RepositoryFactory
	referralService IReferralService
	eventPublisher  *pktNats.Publisher
}

func NewUpgradeService(uowFactory unitofwork.RepositoryFactory, referralService IReferralService, eventPublisher *pktNats.Publisher) IUpgradeService {
	return &upgradeService{
		uowFactory:      uowFactory,
		referralService: referralService,
		eventPublisher:  eventPublisher,
	}
}

func upgradePriceIDR() int64 {
	if v := os.Getenv("UPGRADE_PRICE_IDR"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return 99000
}

func (s *upgradeService) Checkout(ctx context.Context, userId uuid.UUID, req *dto.UpgradeCheckoutRequest) (*dto.UpgradeCheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	if user.Tier == entity.UserTierPremium {
		return nil, errors.New("account is already premium")
	}

	amount := upgradePriceIDR()
	orderId := uuid.New()
	order := &entity.UpgradeOrder{
		Id:        orderId,
		UserId:    userId,
		Amount:    amount,
		Status:    entity.UpgradeOrderPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Transaction
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UpgradeRepository().Create(ctx, order); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// -- Midtrans Logic (External Service calls usually outside DB tx, safe here after commit) --
	var sClient snap.Client
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}
	sClient.New(serverKey, env)

	frontendURL := os.Getenv("FRONTEND_URL")
	finishRedirectURL := fmt.Sprintf("%s/app?payment=success", frontendURL)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId.String(),
			GrossAmt: amount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: finishRedirectURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.FirstName,
			LName: req.LastName,
			Email: req.Email,
			Phone: req.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    "premium-upgrade",
				Price: amount,
				Qty:   1,
				Name:  "PageCraft Premium Upgrade",
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	// Keep the token so the frontend can reopen the payment popup later.
	if err := s.uowFactory.NewUnitOfWork(ctx).UpgradeRepository().SetSnapToken(ctx, orderId, snapResp.Token); err != nil {
		fmt.Printf("[WARN] Failed to store snap token for order %s: %v\n", orderId, err)
	}

	return &dto.UpgradeCheckoutResponse{
		OrderId:         orderId,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

func (s *upgradeService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	fmt.Printf("\n[WEBHOOK] ========== Processing Notification ==========\n")
	fmt.Printf("[WEBHOOK] OrderId: %s | Status: %s\n", req.OrderId, req.TransactionStatus)

	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		fmt.Println("[WEBHOOK ERROR] MIDTRANS_SERVER_KEY not configured")
		return fmt.Errorf("server configuration error")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))

	if req.SignatureKey != expectedSignature {
		fmt.Printf("[WEBHOOK ERROR] Signature mismatch for OrderId=%s\n", req.OrderId)
		return fmt.Errorf("invalid signature")
	}
	fmt.Printf("[WEBHOOK] Signature validated successfully\n")

	orderId, err := uuid.Parse(req.OrderId)
	if err != nil {
		fmt.Printf("[WEBHOOK ERROR] Invalid order_id format: %s\n", req.OrderId)
		return fmt.Errorf("invalid order id format")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		fmt.Printf("[WEBHOOK ERROR] Failed to begin transaction: %v\n", err)
		return err
	}
	defer uow.Rollback()

	order, err := uow.UpgradeRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		fmt.Printf("[WEBHOOK ERROR] Database error finding order: %v\n", err)
		return err
	}
	if order == nil {
		fmt.Printf("[WEBHOOK ERROR] Upgrade order not found: %s\n", req.OrderId)
		return fmt.Errorf("upgrade order not found")
	}

	fmt.Printf("[WEBHOOK] Found order: UserId=%s, CurrentStatus=%s\n", order.UserId, order.Status)

	switch req.TransactionStatus {
	case "capture", "settlement":
		if order.Status == entity.UpgradeOrderPaid {
			fmt.Printf("[WEBHOOK] Order already paid, skipping update\n")
			return nil
		}
		fmt.Printf("[WEBHOOK] Payment SUCCESS - will upgrade account\n")

		now := time.Now()
		if err := uow.UpgradeRepository().MarkPaid(ctx, order.Id, now); err != nil {
			fmt.Printf("[WEBHOOK ERROR] Failed to mark order paid: %v\n", err)
			return err
		}
		if err := uow.UserRepository().UpdateTier(ctx, order.UserId, string(entity.UserTierPremium)); err != nil {
			fmt.Printf("[WEBHOOK ERROR] Failed to upgrade user tier: %v\n", err)
			return err
		}

		if err := uow.Commit(); err != nil {
			fmt.Printf("[WEBHOOK ERROR] Failed to commit transaction: %v\n", err)
			return err
		}

		// First paid upgrade triggers the inviter's reward, flag-guarded.
		if err := s.referralService.ProcessUpgradeReward(ctx, order.UserId); err != nil {
			fmt.Printf("[WEBHOOK ERROR] Failed to process referral upgrade reward: %v\n", err)
		}

		if s.eventPublisher != nil {
			evt := events.BaseEvent{
				Type: events.TypeUpgradePaid,
				Data: map[string]interface{}{
					"order_id":    order.Id,
					"user_id":     order.UserId,
					"amount":      order.Amount,
					"occurred_at": now,
				},
				OccurredAt: now,
			}
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				fmt.Printf("[WARN] Failed to publish upgrade paid event: %v\n", err)
			}
		}

	case "deny", "cancel", "expire":
		fmt.Printf("[WEBHOOK] Payment FAILED - will mark order failed\n")
		if err := uow.UpgradeRepository().MarkFailed(ctx, order.Id); err != nil {
			fmt.Printf("[WEBHOOK ERROR] Failed to mark order failed: %v\n", err)
			return err
		}
		if err := uow.Commit(); err != nil {
			fmt.Printf("[WEBHOOK ERROR] Failed to commit transaction: %v\n", err)
			return err
		}

	case "pending":
		fmt.Printf("[WEBHOOK] Payment PENDING - no action needed\n")
		return nil

	default:
		fmt.Printf("[WEBHOOK] Unknown status '%s' - no action taken\n", req.TransactionStatus)
		return nil
	}

	fmt.Printf("[WEBHOOK] Successfully processed order %s\n", orderId)
	fmt.Printf("[WEBHOOK] ===========================================\n\n")
	return nil
}

func (s *upgradeService) GetStatus(ctx context.Context, userId uuid.UUID) (*dto.UpgradeStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	orders, err := uow.UpgradeRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 1, Offset: 0},
	)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, errors.New("no upgrade order found")
	}

	order := orders[0]
	return &dto.UpgradeStatusResponse{
		OrderId:   order.Id,
		Status:    string(order.Status),
		Amount:    order.Amount,
		PaidAt:    order.PaidAt,
		CreatedAt: order.CreatedAt,
	}, nil
}
