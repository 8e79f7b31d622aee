package model

import "time"

// TaskStatus is a workflow stage (draft, published, ...). Tasks reference it by slug.
type TaskStatus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t TaskStatus) GetID() uint { return t.ID }
