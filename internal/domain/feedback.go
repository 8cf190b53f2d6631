package domain

import "time"

// Feedback is the structured outcome of a completed task, used to
// update the Bandit. At most one row exists per task (I2).
type Feedback struct {
	ID         string
	TaskID     string
	EmployeeID string

	// Reward components — §4.6.
	RCompletion     float64
	ROntime         float64
	RGoodBehaviour  float64
	POverdue        float64
	PRework         float64
	PFailure        float64

	RawReward   float64 // pre-clip sum of the six components above (I6)
	RewardValue float64 // clamp(RawReward, -2.0, +2.0)
	OverdueDays int

	// Context is copied verbatim from the Assignment this feedback
	// closes out (P3: byte-equal to assignments[TaskID].Context).
	Context Vector

	CreatedAt time.Time
}
