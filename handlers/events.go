// handlers/events.go - Live team activity feed over websocket
package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Prem30-jr/Hack-Tracker/services"
)

type EventsHandler struct {
	events *services.TeamEventBus
}

func NewEventsHandler(events *services.TeamEventBus) *EventsHandler {
	return &EventsHandler{events: events}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *EventsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Stream subscribes the connection to the team's event feed. The team
// guard has already run, so the caller is a verified member.
// GET /ws/teams/:teamId
func (h *EventsHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		teamID64, err := strconv.ParseUint(conn.Params("teamId"), 10, 32)
		if err != nil {
			conn.Close()
			return
		}
		teamID := uint(teamID64)

		subID := uuid.NewString()
		events := h.events.Subscribe(teamID, subID)
		defer h.events.Unsubscribe(teamID, subID)

		// Reader goroutine: the client sends nothing meaningful, but
		// reading is what surfaces the close frame.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("ws write to team %d failed: %v", teamID, err)
					return
				}
			case <-done:
				return
			}
		}
	})
}
