// services/events.go - Per-team activity event fan-out
package services

import (
	"sync"
	"time"
)

// TeamEvent is broadcast to websocket subscribers of a team whenever
// the board or checklist changes.
type TeamEvent struct {
	Type      string      `json:"type"`
	TeamID    uint        `json:"team_id"`
	Actor     string      `json:"actor,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventTaskCreated      = "task_created"
	EventTaskUpdated      = "task_updated"
	EventTaskDeleted      = "task_deleted"
	EventChecklistAdded   = "checklist_added"
	EventChecklistToggled = "checklist_toggled"
	EventTemplateApplied  = "template_applied"
	EventMemberJoined     = "member_joined"
)

type subscriber chan TeamEvent

// TeamEventBus fans events out to per-team subscriber sets. Slow
// subscribers drop events rather than block publishers.
type TeamEventBus struct {
	mu    sync.RWMutex
	teams map[uint]map[string]subscriber
}

func NewTeamEventBus() *TeamEventBus {
	return &TeamEventBus{teams: make(map[uint]map[string]subscriber)}
}

// Subscribe registers a subscriber for a team and returns its channel.
// The id must be unique per connection.
func (b *TeamEventBus) Subscribe(teamID uint, id string) <-chan TeamEvent {
	ch := make(subscriber, 16)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.teams[teamID] == nil {
		b.teams[teamID] = make(map[string]subscriber)
	}
	b.teams[teamID][id] = ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *TeamEventBus) Unsubscribe(teamID uint, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.teams[teamID]
	if subs == nil {
		return
	}
	if ch, ok := subs[id]; ok {
		delete(subs, id)
		close(ch)
	}
	if len(subs) == 0 {
		delete(b.teams, teamID)
	}
}

// Publish delivers an event to every subscriber of the team.
func (b *TeamEventBus) Publish(event TeamEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.teams[event.TeamID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many connections watch a team.
func (b *TeamEventBus) SubscriberCount(teamID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.teams[teamID])
}
