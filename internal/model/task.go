package model

import "time"

// Task is a unit of work. It always has a status and may have an assignee and labels.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"title"`
	Index       *int       `json:"index,omitempty"`
	Description string     `json:"content"`
	StatusID    uint       `gorm:"not null;index" json:"-"`
	Status      TaskStatus `gorm:"constraint:OnDelete:RESTRICT" json:"status"`
	AssigneeID  *uint      `gorm:"index" json:"assignee_id,omitempty"`
	Assignee    *User      `gorm:"constraint:OnDelete:RESTRICT" json:"assignee,omitempty"`
	Labels      []Label    `gorm:"many2many:task_labels" json:"labels"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LabelIDs returns the ids of the attached labels in attachment order.
func (t *Task) LabelIDs() []uint {
	ids := make([]uint, 0, len(t.Labels))
	for _, l := range t.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}

// HasLabel reports whether a label with the given id is attached.
func (t *Task) HasLabel(id uint) bool {
	for _, l := range t.Labels {
		if l.ID == id {
			return true
		}
	}
	return false
}
