package model

import "time"

// Label tags tasks through the task_labels join table.
type Label struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:1000" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l Label) GetID() uint { return l.ID }
