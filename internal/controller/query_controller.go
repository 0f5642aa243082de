package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/qainatsaeed/BlackBox-LLM/internal/diagnostics"
	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/gateway"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/serverutils"
	"github.com/qainatsaeed/BlackBox-LLM/internal/registry"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Models(ctx *fiber.Ctx) error
	DirectQuery(ctx *fiber.Ctx) error
}

// queryController exposes the synchronous HTTP surface next to the queue
// consumer. Same pipeline, same envelopes; the queue stays the primary path.
type queryController struct {
	gw          *gateway.Gateway
	registry    *registry.Registry
	diagnostics *diagnostics.Service
}

func NewQueryController(gw *gateway.Gateway, reg *registry.Registry, diag *diagnostics.Service) IQueryController {
	return &queryController{gw: gw, registry: reg, diagnostics: diag}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/stats", c.Stats)
	r.Get("/models", c.Models)
	r.Post("/query/direct", c.DirectQuery)
}

func (c *queryController) Health(ctx *fiber.Ctx) error {
	health, ok := c.diagnostics.Health(ctx.Context())
	if !ok {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return ctx.JSON(health)
}

func (c *queryController) Stats(ctx *fiber.Ctx) error {
	snapshot := c.gw.Snapshot()
	stores := c.diagnostics.Stats(ctx.Context())
	return ctx.JSON(fiber.Map{
		"processed":         snapshot.Processed,
		"succeeded":         snapshot.Succeeded,
		"failed":            snapshot.Failed,
		"indexed_documents": stores["indexed_documents"],
		"pending_requests":  stores["pending_requests"],
	})
}

func (c *queryController) Models(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"models":        c.registry.Names(),
		"default_model": c.registry.DefaultModel(),
	})
}

func (c *queryController) DirectQuery(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "malformed request body"))
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	resp := c.gw.Ask(ctx.Context(), &req)
	if resp.Status == dto.StatusError {
		return ctx.Status(statusFor(resp)).JSON(resp)
	}
	return ctx.JSON(resp)
}

func statusFor(resp *dto.AskResponse) int {
	if resp.Error == nil {
		return fiber.StatusInternalServerError
	}
	switch resp.Error.Code {
	case "BAD_REQUEST", "UNKNOWN_MODEL":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusForbidden
	case "TIMEOUT":
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}
