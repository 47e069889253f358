package controller

import (
	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/internal/pkg/serverutils"
	"ai-lawmatch-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRankingController interface {
	RegisterRoutes(r fiber.Router)
	RankCase(ctx *fiber.Ctx) error
	GetMatches(ctx *fiber.Ctx) error
	ListPresets(ctx *fiber.Ctx) error
}

type rankingController struct {
	service service.IRankingService
}

func NewRankingController(service service.IRankingService) IRankingController {
	return &rankingController{service: service}
}

func (c *rankingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ranking")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/:caseId/rank", c.RankCase)
	h.Get("/:caseId/matches", c.GetMatches)
	h.Get("/presets", c.ListPresets)
}

func (c *rankingController) RankCase(ctx *fiber.Ctx) error {
	caseId, err := uuid.Parse(ctx.Params("caseId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid case id"))
	}

	var req dto.RankRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
		}
	}
	req.CaseId = caseId
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.RankCase(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Ranking computed", res))
}

func (c *rankingController) GetMatches(ctx *fiber.Ctx) error {
	caseId, err := uuid.Parse(ctx.Params("caseId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid case id"))
	}

	res, err := c.service.GetMatches(ctx.Context(), caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Ranked matches", res))
}

func (c *rankingController) ListPresets(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Ranking presets", c.service.ListPresets()))
}
