package controller

import (
	"docstream-be/internal/dto"
	"docstream-be/internal/pkg/serverutils"
	"docstream-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRetrievalController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	ListChunks(ctx *fiber.Ctx) error
}

type retrievalController struct {
	retrievalService service.IRetrievalService
}

func NewRetrievalController(retrievalService service.IRetrievalService) IRetrievalController {
	return &retrievalController{
		retrievalService: retrievalService,
	}
}

func (c *retrievalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/retrieval/v1")
	h.Post("query", c.Query)
	h.Get("chunks", c.ListChunks)
}

func (c *retrievalController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequestError("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.Query(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query chunks", res))
}

func (c *retrievalController) ListChunks(ctx *fiber.Ctx) error {
	docId := ctx.Query("doc_id")
	if docId == "" {
		return serverutils.BadRequestError("Query parameter doc_id is required")
	}

	res, err := c.retrievalService.GetChunksByDocId(ctx.Context(), docId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document chunks", res))
}
