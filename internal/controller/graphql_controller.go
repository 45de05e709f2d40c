package controller

import (
	"ai-shopping-assistant-be/internal/graphql"
	"ai-shopping-assistant-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	gql "github.com/graphql-go/graphql"
)

type IGraphQLController interface {
	RegisterRoutes(r fiber.Router)
	Execute(ctx *fiber.Ctx) error
}

type graphqlController struct {
	schema    gql.Schema
	jwtSecret string
}

func NewGraphQLController(schema gql.Schema, jwtSecret string) IGraphQLController {
	return &graphqlController{schema: schema, jwtSecret: jwtSecret}
}

func (c *graphqlController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/graphql")
	if c.jwtSecret != "" {
		h.Use(serverutils.NewJwtMiddleware(c.jwtSecret, true))
	}
	h.Post("", c.Execute)
}

func (c *graphqlController) Execute(ctx *fiber.Ctx) error {
	var req graphql.Request
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid GraphQL request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reqCtx := ctx.UserContext()
	if userId, ok := ctx.Locals("user_id").(string); ok {
		reqCtx = graphql.WithUserID(reqCtx, userId)
	}

	return ctx.JSON(graphql.Execute(reqCtx, c.schema, req))
}
