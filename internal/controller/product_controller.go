package controller

import (
	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/pkg/serverutils"
	"ai-shopping-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProductController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Featured(ctx *fiber.Ctx) error
	Categories(ctx *fiber.Ctx) error
	Recommendations(ctx *fiber.Ctx) error
}

type productController struct {
	service   service.IProductService
	jwtSecret string
}

func NewProductController(service service.IProductService, jwtSecret string) IProductController {
	return &productController{service: service, jwtSecret: jwtSecret}
}

func (c *productController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/product/v1")
	h.Post("search", c.Search)
	h.Post("recommendations", c.Recommendations)
	h.Get("featured", c.Featured)
	h.Get("categories", c.Categories)
	h.Get(":id", c.Show)

	// Catalog writes need a token when auth is configured.
	guard := func(ctx *fiber.Ctx) error { return ctx.Next() }
	if c.jwtSecret != "" {
		guard = serverutils.NewJwtMiddleware(c.jwtSecret, false)
	}
	h.Post("", guard, c.Create)
	h.Put(":id", guard, c.Update)
	h.Delete(":id", guard, c.Delete)
}

func parseIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, &serverutils.ValidationError{Fields: map[string]string{"id": "must be a valid UUID"}}
	}
	return id, nil
}

func (c *productController) Search(ctx *fiber.Ctx) error {
	var req dto.ProductSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search product", res))
}

func (c *productController) Show(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show product", res))
}

func (c *productController) Create(ctx *fiber.Ctx) error {
	var req dto.AddProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Add(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create product", res))
}

func (c *productController) Update(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update product", res))
}

func (c *productController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete product", nil))
}

func (c *productController) Featured(ctx *fiber.Ctx) error {
	res, err := c.service.Featured(ctx.UserContext(), ctx.QueryInt("limit", 10))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get featured product", res))
}

func (c *productController) Categories(ctx *fiber.Ctx) error {
	res, err := c.service.Categories(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get product categories", res))
}

func (c *productController) Recommendations(ctx *fiber.Ctx) error {
	var req dto.RecommendationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Recommendations(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recommendations", res))
}
