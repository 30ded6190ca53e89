package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/nftex/controllers/helpers"
)

func AdminValidator(c *fiber.Ctx) error {
	role, _ := c.Locals("CurrentRole").(string)

	if role != "admin" && role != "superadmin" {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{"authz.invalid_permission"},
		})
	}

	return c.Next()
}
