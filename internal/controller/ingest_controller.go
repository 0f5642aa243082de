package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/serverutils"
	"github.com/qainatsaeed/BlackBox-LLM/internal/service"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	IngestCSV(ctx *fiber.Ctx) error
	IngestSQL(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestService service.IIngestService
}

func NewIngestController(ingestService service.IIngestService) IIngestController {
	return &ingestController{ingestService: ingestService}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	ingest := r.Group("/ingest")
	ingest.Post("/csv", c.IngestCSV)
	ingest.Post("/sql", c.IngestSQL)
}

func (c *ingestController) IngestCSV(ctx *fiber.Ctx) error {
	var req dto.IngestCSVRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "malformed request body"))
	}
	if err := req.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	resp, err := c.ingestService.IngestCSV(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, err.Error()))
	}
	return ctx.JSON(resp)
}

func (c *ingestController) IngestSQL(ctx *fiber.Ctx) error {
	var req dto.IngestSQLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "malformed request body"))
	}
	if err := req.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	resp, err := c.ingestService.IngestSQL(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, err.Error()))
	}
	return ctx.JSON(resp)
}
