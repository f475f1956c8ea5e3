package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const AuthorKey = "author"

// EnsureAuthor requires the X-Author header (or ?author=) on course writes
// and stores it in the request locals.
func EnsureAuthor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(AuthorKey) != nil {
			return c.Next()
		}

		author := strings.TrimSpace(c.Get("X-Author"))
		if author == "" {
			author = strings.TrimSpace(c.Query("author"))
		}

		if author == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "author is required, set the X-Author header",
			})
		}

		c.Locals(AuthorKey, author)
		return c.Next()
	}
}
