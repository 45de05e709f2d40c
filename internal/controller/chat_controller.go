package controller

import (
	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	UpdateSessionTitle(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	jwtSecret string
}

func NewChatController(service service.IChatService, jwtSecret string) IChatController {
	return &chatController{service: service, jwtSecret: jwtSecret}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	if c.jwtSecret != "" {
		h.Use(serverutils.NewJwtMiddleware(c.jwtSecret, true))
	}
	h.Post("send", c.SendMessage)
	h.Get("history", c.History)
	h.Delete("history", c.ClearHistory)
	h.Get("suggestions", c.Suggestions)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions", c.GetSessions)
	h.Put("sessions/:id", c.UpdateSessionTitle)
	h.Delete("sessions/:id", c.DeleteSession)
}

// userID prefers the authenticated user over the client-supplied one.
func userID(ctx *fiber.Ctx, fallback string) string {
	if id, ok := ctx.Locals("user_id").(string); ok && id != "" {
		return id
	}
	return fallback
}

func requireUserID(ctx *fiber.Ctx) (string, error) {
	userId := userID(ctx, ctx.Query("userId"))
	if userId == "" {
		return "", &serverutils.ValidationError{Fields: map[string]string{"userId": "is required"}}
	}
	return userId, nil
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.UserId = userID(ctx, req.UserId)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.SendMessage(ctx.UserContext(), &req)
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := requireUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetConversationHistory(ctx.UserContext(), userId, ctx.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	userId, err := requireUserID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.ClearConversationHistory(ctx.UserContext(), userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear conversation history", nil))
}

func (c *chatController) Suggestions(ctx *fiber.Ctx) error {
	var msgContext *string
	if v := ctx.Query("context"); v != "" {
		msgContext = &v
	}

	res := c.service.GetChatSuggestions(ctx.UserContext(), msgContext)
	return ctx.JSON(serverutils.SuccessResponse("Success get chat suggestions", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.UserId = userID(ctx, req.UserId)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateConversation(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *chatController) GetSessions(ctx *fiber.Ctx) error {
	userId, err := requireUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetConversationSessions(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversations", res))
}

func (c *chatController) UpdateSessionTitle(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateConversationTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	req.UserId = userID(ctx, req.UserId)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateConversationTitle(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update conversation", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}
	userId, err := requireUserID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteConversation(ctx.UserContext(), id, userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete conversation", nil))
}
