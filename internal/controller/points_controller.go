// FILE: internal/controller/points_controller.go
package controller

import (
	"errors"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/pkg/ratelimit"
	"pagecraft-be/internal/pkg/serverutils"
	"pagecraft-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Redemption caps per user per window. Generous for humans, hostile to
// code-guessing scripts.
const (
	redeemLimit  = 10
	redeemWindow = time.Minute
)

type IPointsController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
	GetBalances(ctx *fiber.Ctx) error
	GetTransactions(ctx *fiber.Ctx) error
	GetConfig(ctx *fiber.Ctx) error
	Redeem(ctx *fiber.Ctx) error
}

type pointsController struct {
	service      service.IPointsService
	grantService service.IGrantService
	limiter      *ratelimit.Limiter
}

func NewPointsController(service service.IPointsService, grantService service.IGrantService, limiter *ratelimit.Limiter) IPointsController {
	return &pointsController{
		service:      service,
		grantService: grantService,
		limiter:      limiter,
	}
}

func (c *pointsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/points")

	// Public: lets the pricing page render without a session
	h.Get("/config", c.GetConfig)

	// Protected Routes
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetStatus)
	h.Get("/balances", c.GetBalances)
	h.Get("/transactions", c.GetTransactions)
	h.Post("/recharge", c.limiter.Middleware("redeem", redeemLimit, redeemWindow), c.Redeem)
}

func (c *pointsController) GetStatus(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetBalanceStatus(ctx.Context(), userId)
	if err != nil {
		if err.Error() == "user not found" {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Balance status", res))
}

func (c *pointsController) GetBalances(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	includeExpired := ctx.QueryBool("include_expired", false)

	res, err := c.service.GetBalances(ctx.Context(), userId, includeExpired)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Point balances", res))
}

func (c *pointsController) GetTransactions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	page := ctx.QueryInt("page", 1)
	perPage := ctx.QueryInt("per_page", 20)
	txType := ctx.Query("type") // income | expense | empty for all

	res, err := c.service.GetTransactions(ctx.Context(), userId, page, perPage, txType)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Point transactions", res))
}

func (c *pointsController) GetConfig(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Points configuration", c.service.GetConfig()))
}

func (c *pointsController) Redeem(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.RedeemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.grantService.RedeemCode(ctx.Context(), userId, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCodeInvalid) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		if errors.Is(err, service.ErrCodeAlreadyUsed) || errors.Is(err, service.ErrCodeExpired) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Code redeemed", res))
}
