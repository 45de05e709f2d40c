package controller

import (
	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Profile(ctx *fiber.Ctx) error
	GetPreferences(ctx *fiber.Ctx) error
	UpdatePreferences(ctx *fiber.Ctx) error
	TrackActivity(ctx *fiber.Ctx) error
}

type userController struct {
	service   service.IUserService
	jwtSecret string
}

func NewUserController(service service.IUserService, jwtSecret string) IUserController {
	return &userController{service: service, jwtSecret: jwtSecret}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	if c.jwtSecret != "" {
		h.Use(serverutils.NewJwtMiddleware(c.jwtSecret, true))
	}
	h.Get("profile", c.Profile)
	h.Get("preferences", c.GetPreferences)
	h.Put("preferences", c.UpdatePreferences)
	h.Post("activity", c.TrackActivity)
}

func (c *userController) Profile(ctx *fiber.Ctx) error {
	userId, err := requireUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetProfile(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get user profile", res))
}

func (c *userController) GetPreferences(ctx *fiber.Ctx) error {
	userId, err := requireUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetPreferences(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get user preferences", res))
}

func (c *userController) UpdatePreferences(ctx *fiber.Ctx) error {
	var req dto.UpdateUserPreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.UserId = userID(ctx, req.UserId)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdatePreferences(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update user preferences", res))
}

func (c *userController) TrackActivity(ctx *fiber.Ctx) error {
	var req dto.TrackUserActivityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.UserId = userID(ctx, req.UserId)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.TrackActivity(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Activity recorded", nil))
}
