package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"groupware-ai-be/internal/dto"
	"groupware-ai-be/internal/pkg/serverutils"
	"groupware-ai-be/internal/service"
	"groupware-ai-be/pkg/callback"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Run(ctx *fiber.Ctx) error
	RunStatus(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Post("run", c.Run)
	h.Get("run/:messageId", c.RunStatus)
}

func (c *chatbotController) Run(ctx *fiber.Ctx) error {
	var req dto.RunChatbotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Enqueue(ctx.Context(), &req)
	if err != nil {
		var permanent *callback.PermanentError
		if errors.As(err, &permanent) {
			return fiber.NewError(fiber.StatusBadRequest, permanent.Reason)
		}
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Run accepted", res))
}

func (c *chatbotController) RunStatus(ctx *fiber.Ctx) error {
	messageId := ctx.Params("messageId")
	if messageId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "messageId is required")
	}

	res, err := c.chatbotService.GetRunStatus(ctx.Context(), messageId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "run not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get run status", res))
}
