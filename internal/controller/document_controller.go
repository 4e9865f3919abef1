package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"groupware-ai-be/internal/dto"
	"groupware-ai-be/internal/pkg/serverutils"
	"groupware-ai-be/internal/service"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("", c.Ingest)
	h.Delete(":provNo", c.Delete)
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestProvDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Document queued for embedding", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	provNo, err := strconv.ParseInt(ctx.Params("provNo"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "provNo must be numeric")
	}

	comId := ctx.Query("comId")
	if comId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "comId is required")
	}

	res, err := c.documentService.Delete(ctx.Context(), comId, provNo)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", res))
}
