// utils/response.go - Handler boundary error translation
package utils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
)

// Error translates any error into the JSON {message} body the API
// speaks, using the apperr status when present. Internal causes are
// logged but never sent to the client.
func Error(c *fiber.Ctx, err error) error {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= 500 {
			log.Printf("request failed: %s: %v", c.Path(), err)
		}
		return c.Status(appErr.Code).JSON(fiber.Map{"message": appErr.Message})
	}

	log.Printf("unhandled error: %s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server Error"})
}
