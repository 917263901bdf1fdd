package controller

import (
	"docstream-be/internal/dto"
	"docstream-be/internal/pkg/serverutils"
	"docstream-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
	ShowDocument(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
}

type pipelineController struct {
	ingestService service.IIngestService
}

func NewPipelineController(ingestService service.IIngestService) IPipelineController {
	return &pipelineController{
		ingestService: ingestService,
	}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Post("ingest", c.Ingest)
	h.Post("documents/:doc_id/reprocess", c.Reprocess)
	h.Get("documents", c.ListDocuments)
	h.Get("documents/:doc_id", c.ShowDocument)
}

func (c *pipelineController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequestError("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Document queued for ingestion", res))
}

func (c *pipelineController) Reprocess(ctx *fiber.Ctx) error {
	docId := ctx.Params("doc_id")

	res, err := c.ingestService.Reprocess(ctx.Context(), docId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Document queued for reprocessing", res))
}

func (c *pipelineController) ListDocuments(ctx *fiber.Ctx) error {
	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.BadRequestError("Invalid query parameters")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.ListDocuments(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *pipelineController) ShowDocument(ctx *fiber.Ctx) error {
	docId := ctx.Params("doc_id")

	res, err := c.ingestService.GetDocument(ctx.Context(), docId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
}
