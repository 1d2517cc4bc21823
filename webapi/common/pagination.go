package common

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Pagination reads limit and offset from the query string. A missing limit
// defaults to DefaultPageLimit; larger limits are capped at MaxPageLimit.
func Pagination(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = queryInt(c, "limit", DefaultPageLimit)
	if err != nil || limit < 1 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}
	offset, err = queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "offset must be a non-negative integer")
	}
	return min(limit, MaxPageLimit), offset, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
