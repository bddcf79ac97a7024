package models

import "time"

// Class represents an academy class students request to join. A nil Capacity
// means unlimited enrollment.
type Class struct {
	ID            string    `db:"id" json:"id"`
	BatchID       string    `db:"batch_id" json:"batch_id"`
	Name          string    `db:"name" json:"name"`
	Capacity      *int      `db:"capacity" json:"capacity,omitempty"`
	EnrolledCount int       `db:"enrolled_count" json:"enrolled_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CapacitySnapshot reports enrollment figures observed at a point in time.
type CapacitySnapshot struct {
	Current   int  `json:"current"`
	Max       *int `json:"max,omitempty"`
	Available *int `json:"available,omitempty"`
}

// Snapshot derives a CapacitySnapshot from the class state.
func (c *Class) Snapshot() CapacitySnapshot {
	snap := CapacitySnapshot{Current: c.EnrolledCount, Max: c.Capacity}
	if c.Capacity != nil {
		available := *c.Capacity - c.EnrolledCount
		if available < 0 {
			available = 0
		}
		snap.Available = &available
	}
	return snap
}

// HasCapacity reports whether one more enrollment would fit.
func (c *Class) HasCapacity() bool {
	return c.Capacity == nil || c.EnrolledCount < *c.Capacity
}
