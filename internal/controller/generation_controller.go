// FILE: internal/controller/generation_controller.go
package controller

import (
	"errors"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/pkg/serverutils"
	"pagecraft-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
}

func NewGenerationController(generationService service.IGenerationService) IGenerationController {
	return &generationController{
		generationService: generationService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	r.Post("/generate", serverutils.JwtMiddleware, c.Create)

	h := r.Group("/generations")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *generationController) Create(ctx *fiber.Ctx) error {
	// 1. Get User ID from Token
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	// 2. Queue the job
	res, err := c.generationService.Create(ctx.Context(), userId, &req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientPoints) {
			return ctx.Status(fiber.StatusPaymentRequired).JSON(serverutils.ErrorResponse(402, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation job queued", res))
}

func (c *generationController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid job ID"))
	}

	res, err := c.generationService.Show(ctx.Context(), userId, id)
	if err != nil {
		if err.Error() == "generation job not found" {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation job", res))
}

func (c *generationController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	page := ctx.QueryInt("page", 1)
	perPage := ctx.QueryInt("per_page", 20)

	res, err := c.generationService.List(ctx.Context(), userId, page, perPage)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation jobs", res))
}
