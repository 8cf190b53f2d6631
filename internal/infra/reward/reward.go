// Package reward implements the Reward Calculator (§4.6): turning raw
// completion facts into six reward components, a raw sum, and a bounded
// scalar reward.
package reward

import (
	"math"
	"time"
)

// MinReward and MaxReward bound reward_value (§4.6).
const (
	MinReward = -2.0
	MaxReward = 2.0
)

const (
	rCompletion    = 1.0
	rOntime        = 0.5
	rGoodBehaviour = 0.2
	overduePenalty = -0.4
	overdueCap     = 7
	reworkPenalty  = -0.5
	failurePenalty = -1.2
)

// Inputs are the facts the calculator needs; none requires a human
// rating (§4.6 "Inputs").
type Inputs struct {
	Difficulty     int
	DueDate        *time.Time
	AssignedAt     time.Time
	CompletionTime time.Time
	ReworkCount    int
	ForceClosed    bool // true if the task was force-closed rather than completed
}

// Components holds the six additive terms plus the derived raw and
// clipped rewards (I6).
type Components struct {
	RCompletion    float64
	ROntime        float64
	RGoodBehaviour float64
	POverdue       float64
	PRework        float64
	PFailure       float64

	RawReward   float64
	RewardValue float64
	OverdueDays int
}

// Compute derives Components from in (§4.6 formula, deterministic — P5).
func Compute(in Inputs) Components {
	completionDays := in.CompletionTime.Sub(in.AssignedAt).Hours() / 24
	expectedDays := expectedDays(in.Difficulty)

	c := Components{RCompletion: rCompletion}

	onTime := in.DueDate == nil || !in.CompletionTime.After(*in.DueDate)
	if onTime {
		c.ROntime = rOntime
	}

	if completionDays <= expectedDays {
		c.RGoodBehaviour = rGoodBehaviour
	}

	if in.DueDate != nil {
		overdueDays := int(math.Floor(in.CompletionTime.Sub(*in.DueDate).Hours() / 24))
		if overdueDays > 0 {
			c.OverdueDays = overdueDays
			c.POverdue = overduePenalty * float64(min(overdueDays, overdueCap))
		}
	}

	if in.ReworkCount > 0 {
		c.PRework = reworkPenalty * float64(in.ReworkCount)
	}

	if in.ForceClosed {
		c.PFailure = failurePenalty
	}

	c.RawReward = c.RCompletion + c.ROntime + c.RGoodBehaviour + c.POverdue + c.PRework + c.PFailure
	c.RewardValue = clamp(c.RawReward, MinReward, MaxReward)
	return c
}

// expectedDays implements f(d) = max(1, d) (§4.6).
func expectedDays(difficulty int) float64 {
	if difficulty < 1 {
		return 1
	}
	return float64(difficulty)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
