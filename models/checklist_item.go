// models/checklist_item.go
package models

import "time"

type ChecklistItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TeamID      uint      `json:"team_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed" gorm:"default:false"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
