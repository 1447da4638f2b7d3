// handlers/ai.go - AI assistant endpoint
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/services"
	"github.com/Prem30-jr/Hack-Tracker/utils"
)

type AIHandler struct {
	ai *services.AIService
}

func NewAIHandler(ai *services.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// Chat forwards a prompt to the AI assistant using the prompt template
// selected by type.
// POST /api/ai/chat/:teamId
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
		Type   string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}
	if req.Prompt == "" {
		return utils.Error(c, apperr.Validation("Prompt is required"))
	}

	response, err := h.ai.Assist(c.UserContext(), req.Prompt, req.Type)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(fiber.Map{"response": response})
}
