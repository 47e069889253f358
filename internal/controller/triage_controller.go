package controller

import (
	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/internal/pkg/serverutils"
	"ai-lawmatch-be/internal/service"
	internalWS "ai-lawmatch-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ITriageController interface {
	RegisterRoutes(r fiber.Router)
	StartTriage(ctx *fiber.Ctx) error
	ContinueTriage(ctx *fiber.Ctx) error
	ForceComplete(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type triageController struct {
	service service.ITriageService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewTriageController(service service.ITriageService, hub *internalWS.Hub, log logger.ILogger) ITriageController {
	return &triageController{service: service, hub: hub, logger: log}
}

func (c *triageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/triage")
	h.Get("/:caseId/ws", c.ServeWs) // token checked in handler; ws cannot send headers from browsers

	h.Use(serverutils.JwtMiddleware)
	h.Post("/start", c.StartTriage)
	h.Post("/:caseId/message", c.ContinueTriage)
	h.Post("/:caseId/complete", c.ForceComplete)
	h.Get("/:caseId/status", c.GetStatus)
}

func (c *triageController) StartTriage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.StartTriageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.service.StartTriage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Triage started", res))
}

func (c *triageController) ContinueTriage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	caseId, err := uuid.Parse(ctx.Params("caseId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid case id"))
	}

	var req dto.ContinueTriageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.CaseId = caseId
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.ContinueTriage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message processed", res))
}

func (c *triageController) ForceComplete(ctx *fiber.Ctx) error {
	caseId, err := uuid.Parse(ctx.Params("caseId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid case id"))
	}

	res, err := c.service.ForceComplete(ctx.Context(), caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Triage completed", res))
}

func (c *triageController) GetStatus(ctx *fiber.Ctx) error {
	caseId, err := uuid.Parse(ctx.Params("caseId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid case id"))
	}

	res, err := c.service.GetStatus(ctx.Context(), caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Triage status", res))
}

// ServeWs upgrades the connection and streams triage progress events for one
// case. The first frame is always the initial_state snapshot.
func (c *triageController) ServeWs(ctx *fiber.Ctx) error {
	caseId, err := uuid.Parse(ctx.Params("caseId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid case id"})
	}

	snapshot, err := c.service.StatusSnapshot(ctx.Context(), caseId)
	if err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("TriageController", "Starting WebSocket session", map[string]interface{}{"case_id": caseId})
			internalWS.ServeWs(c.hub, conn, caseId, snapshot)
			c.logger.Info("TriageController", "WebSocket session ended", map[string]interface{}{"case_id": caseId})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}
