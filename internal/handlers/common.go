package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lumenworks/sitecms/internal/document"
)

// defaultLanguage is the fallback when a request names no language.
const defaultLanguage = "ja"

// parseLanguage extracts the language query parameter, defaulting to
// Japanese. Unknown codes pass through; an absent translation simply
// reads as empty fields.
func parseLanguage(c *fiber.Ctx) string {
	lang := c.Query("language")
	if lang == "" {
		return defaultLanguage
	}
	return lang
}

// parseLimit extracts a positive row limit from the query, 0 meaning
// unlimited. Malformed or negative values read as 0.
func parseLimit(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseID extracts a numeric id path parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}

// validPostType reports whether the path parameter names a known post
// type.
func validPostType(t string) bool {
	return document.ValidPostType(t)
}
