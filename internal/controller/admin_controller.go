// FILE: internal/controller/admin_controller.go
package controller

import (
	"os"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/pkg/serverutils"
	"pagecraft-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GrantPoints(ctx *fiber.Ctx) error
	GenerateCodes(ctx *fiber.Ctx) error
	ListCodes(ctx *fiber.Ctx) error
}

type adminController struct {
	grantService service.IGrantService
}

func NewAdminController(grantService service.IGrantService) IAdminController {
	return &adminController{grantService: grantService}
}

// Middleware to check for Admin Role
// This logic assumes JWT claims have "role": "admin"
func (c *adminController) adminMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")

	// Check if Authorization header exists and has Bearer prefix
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Missing or invalid authorization header"))
	}
	tokenStr := authHeader[7:]

	// Get JWT secret
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}

	// Parse with Claims
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil || token == nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid or expired token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	// Check admin role
	role, ok := claims["role"].(string)
	if !ok {
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Access denied: Role missing"))
	}
	if role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(403, "Access denied: Admins only"))
	}

	// Store user_id in context for handlers
	if userId, exists := claims["user_id"]; exists {
		ctx.Locals("user_id", userId)
	}

	return ctx.Next()
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(c.adminMiddleware) // Enforce Admin Middleware for all routes below

	// Points
	h.Post("/points/grant", c.GrantPoints)

	// Recharge Codes
	h.Post("/recharge-codes", c.GenerateCodes)
	h.Get("/recharge-codes", c.ListCodes)
}

func (c *adminController) GrantPoints(ctx *fiber.Ctx) error {
	adminIdStr := ctx.Locals("user_id").(string)
	adminId, _ := uuid.Parse(adminIdStr)

	var req dto.GrantPointsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.grantService.GrantAdmin(ctx.Context(), adminId, &req)
	if err != nil {
		errMsg := err.Error()
		if errMsg == "user not found" {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, errMsg))
		}
		if errMsg == service.ErrInvalidGrant.Error() {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, errMsg))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Points granted", res))
}

func (c *adminController) GenerateCodes(ctx *fiber.Ctx) error {
	adminIdStr := ctx.Locals("user_id").(string)
	adminId, _ := uuid.Parse(adminIdStr)

	var req dto.GenerateCodesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.grantService.GenerateCodes(ctx.Context(), adminId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Recharge codes generated", res))
}

func (c *adminController) ListCodes(ctx *fiber.Ctx) error {
	batchNo := ctx.Query("batch_no")
	page := ctx.QueryInt("page", 1)
	perPage := ctx.QueryInt("per_page", 20)

	res, err := c.grantService.ListCodes(ctx.Context(), batchNo, page, perPage)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Recharge codes", res))
}
