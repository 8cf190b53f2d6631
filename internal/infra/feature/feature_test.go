package feature

import (
	"math"
	"testing"
	"time"

	"github.com/rosterhq/roster/internal/domain"
)

func TestExtract_BasicComponents(t *testing.T) {
	clock := domain.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	e := New(clock)

	task := domain.Task{Priority: 3, Difficulty: 4, RequiredSkills: []string{"rust"}}
	employee := domain.Employee{
		ProductivityScore: 0.75,
		Workload:          4,
		Skills:            []domain.Skill{{Name: "rust", ExperienceMonths: 30, TenureMonths: 12}},
	}

	x := e.Extract(task, employee, 0.6)

	if x[0] != 0.75 {
		t.Errorf("x1 = %v, want 0.75", x[0])
	}
	wantWorkload := 1 - 4.0/10.0
	if math.Abs(x[1]-wantWorkload) > 1e-9 {
		t.Errorf("x2 = %v, want %v", x[1], wantWorkload)
	}
	wantPriority := (3.0 - 1) / 4
	if math.Abs(x[2]-wantPriority) > 1e-9 {
		t.Errorf("x3 = %v, want %v", x[2], wantPriority)
	}
	wantDifficulty := (4.0 - 1) / 9
	if math.Abs(x[3]-wantDifficulty) > 1e-9 {
		t.Errorf("x4 = %v, want %v", x[3], wantDifficulty)
	}
	if x[4] != 0.6 {
		t.Errorf("x5 = %v, want 0.6 (reused similarity score)", x[4])
	}
	if x[5] != 0 {
		t.Errorf("x6 = %v, want 0 (no due date)", x[5])
	}
	wantExp := 30.0 / 60.0
	if math.Abs(x[6]-wantExp) > 1e-9 {
		t.Errorf("x7 = %v, want %v", x[6], wantExp)
	}
	wantTenure := 12.0 / 60.0
	if math.Abs(x[7]-wantTenure) > 1e-9 {
		t.Errorf("x8 = %v, want %v", x[7], wantTenure)
	}
}

func TestExtract_OverdueDueDateGivesMaxUrgency(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	clock := domain.NewFixedClock(now)
	e := New(clock)

	past := now.Add(-24 * time.Hour)
	task := domain.Task{DueDate: &past}

	x := e.Extract(task, domain.Employee{}, 0)
	if x[5] != 1 {
		t.Fatalf("x6 = %v, want 1 for an overdue due date", x[5])
	}
}

func TestExtract_FarFutureDueDateGivesZeroUrgency(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	clock := domain.NewFixedClock(now)
	e := New(clock)

	future := now.Add(200 * time.Hour)
	task := domain.Task{DueDate: &future}

	x := e.Extract(task, domain.Employee{}, 0)
	if x[5] != 0 {
		t.Fatalf("x6 = %v, want 0 for a due date far beyond the horizon", x[5])
	}
}

func TestExtract_NoSkillOverlapGivesZeroExperienceTenure(t *testing.T) {
	clock := domain.NewFixedClock(time.Now())
	e := New(clock)

	task := domain.Task{RequiredSkills: []string{"go"}}
	employee := domain.Employee{Skills: []domain.Skill{{Name: "python", ExperienceMonths: 40}}}

	x := e.Extract(task, employee, 0)
	if x[6] != 0 || x[7] != 0 {
		t.Fatalf("x7,x8 = %v,%v, want 0,0 with no overlapping skills", x[6], x[7])
	}
}
