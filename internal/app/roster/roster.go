// Package roster implements the Assignment Coordinator (§4.5) and
// Feedback Ingestor (§4.7): the two operations that orchestrate the
// Skill Similarity Filter, Feature Extractor, Contextual Bandit, and
// Reward Calculator against a domain.Store.
package roster

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/infra/bandit"
	"github.com/rosterhq/roster/internal/infra/feature"
	"github.com/rosterhq/roster/internal/infra/metrics"
	"github.com/rosterhq/roster/internal/infra/reward"
	"github.com/rosterhq/roster/internal/infra/similarity"
)

// Config holds the tunables named in §6 "Configuration".
type Config struct {
	EmbeddingDim int // D, representative value 1536 (§4.1)
	SimilarityK  int // top-K cutoff, default 3 (§4.2)
	Bandit       bandit.Config
}

// DefaultConfig returns the spec's defaults.
func DefaultConfig() Config {
	return Config{
		EmbeddingDim: 1536,
		SimilarityK:  similarity.DefaultK,
		Bandit:       bandit.DefaultConfig(),
	}
}

// Recommendation is one ranked candidate returned by Recommend — a
// read-only preview that never mutates state (§6).
type Recommendation struct {
	EmployeeID string
	Score      float64
	Context    domain.Vector
}

// Engine implements the Go surface named in SPEC_FULL.md §6.1.
type Engine struct {
	store      domain.Store
	clock      domain.Clock
	embeddings domain.EmbeddingProvider

	filter   *similarity.Filter
	features *feature.Extractor
	bandit   *bandit.Bandit

	cfg Config
}

// New wires an Engine from its collaborators (§2 "Control flow").
func New(store domain.Store, clock domain.Clock, embeddings domain.EmbeddingProvider, cfg Config) *Engine {
	if cfg.SimilarityK <= 0 {
		cfg.SimilarityK = similarity.DefaultK
	}
	return &Engine{
		store:      store,
		clock:      clock,
		embeddings: embeddings,
		filter:     similarity.New(embeddings, cfg.SimilarityK),
		features:   feature.New(clock),
		bandit:     bandit.New(cfg.Bandit),
		cfg:        cfg,
	}
}

// AssignTask implements `assign(task_id, mode, manual_employee_id?)`
// (§4.5). manualEmployeeID is ignored when mode is AssignAuto.
func (e *Engine) AssignTask(ctx context.Context, taskID string, mode domain.AssignMode, manualEmployeeID string) (assignment *domain.Assignment, err error) {
	start := e.clock.Now()
	outcome := "error"
	defer func() {
		metrics.AssignLatency.WithLabelValues(string(mode)).Observe(e.clock.Now().Sub(start).Seconds())
		metrics.AssignmentsTotal.WithLabelValues(string(mode), outcome).Inc()
	}()

	err = e.store.WithTx(ctx, func(ctx context.Context) error {
		task, terr := e.store.GetTask(ctx, taskID)
		if terr != nil {
			return terr
		}

		if open, oerr := e.store.GetOpenAssignment(ctx, taskID); oerr != nil {
			return oerr
		} else if open != nil {
			return domain.ErrAlreadyAssigned
		}

		if err := e.ensureTaskEmbeddings(ctx, task); err != nil {
			log.Printf("[coordinator] task embedding regeneration failed for %s, proceeding degraded: %v", taskID, err)
		}

		var a domain.Assignment
		var aerr error
		if mode == domain.AssignManual {
			a, aerr = e.assignManual(ctx, *task, manualEmployeeID)
		} else {
			a, aerr = e.assignAuto(ctx, *task)
		}
		if aerr != nil {
			return aerr
		}

		if err := e.store.InsertAssignment(ctx, a); err != nil {
			return err
		}
		if err := e.store.SetTaskAssignee(ctx, a.TaskID, a.AssigneeID); err != nil {
			return err
		}
		if err := e.store.AdjustWorkload(ctx, a.AssigneeID, 1); err != nil {
			return err
		}
		assignment = &a
		return nil
	})

	if err == nil {
		outcome = "success"
	} else {
		outcome = outcomeLabel(err)
	}
	return assignment, err
}

func (e *Engine) assignManual(ctx context.Context, task domain.Task, employeeID string) (domain.Assignment, error) {
	employee, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil || employee == nil || !employee.Active {
		return domain.Assignment{}, domain.ErrInvalidManualTarget
	}
	if err := e.ensureEmployeeEmbeddings(ctx, employee); err != nil {
		log.Printf("[coordinator] employee embedding regeneration failed for %s, proceeding degraded: %v", employeeID, err)
	}

	x := e.features.Extract(task, *employee, 0) // no Similarity Filter ran in manual mode (§4.5)
	return domain.Assignment{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		AssigneeID:  employee.ID,
		Context:     x,
		AssignedAt:  e.clock.Now(),
		ReworkCount: 0,
	}, nil
}

func (e *Engine) assignAuto(ctx context.Context, task domain.Task) (domain.Assignment, error) {
	pool, err := e.store.ListActiveEmployees(ctx)
	if err != nil {
		return domain.Assignment{}, err
	}
	if len(pool) == 0 {
		return domain.Assignment{}, domain.ErrNoCandidates
	}
	for i := range pool {
		if err := e.ensureEmployeeEmbeddings(ctx, &pool[i]); err != nil {
			log.Printf("[coordinator] employee embedding regeneration failed for %s, proceeding degraded: %v", pool[i].ID, err)
		}
	}

	scored := e.filter.TopK(ctx, task, pool)

	candidates := make([]bandit.Candidate, len(scored))
	contexts := make(map[string]domain.Vector, len(scored))
	states := make(map[string]domain.BanditState, len(scored))
	for i, s := range scored {
		x := e.features.Extract(task, s.Employee, s.Similarity)
		candidates[i] = bandit.Candidate{
			EmployeeID:        s.Employee.ID,
			Context:           x,
			ProductivityScore: s.Employee.ProductivityScore,
			Workload:          s.Employee.Workload,
		}
		contexts[s.Employee.ID] = x

		st, err := e.store.LoadBanditState(ctx, s.Employee.ID)
		if err != nil {
			return domain.Assignment{}, err
		}
		if st == nil {
			metrics.BanditColdStarts.Inc()
		} else {
			states[s.Employee.ID] = *st
		}
	}

	winnerID, err := e.bandit.Select(candidates, states)
	if err != nil {
		return domain.Assignment{}, domain.ErrNoCandidates
	}

	return domain.Assignment{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		AssigneeID:  winnerID,
		Context:     contexts[winnerID],
		AssignedAt:  e.clock.Now(),
		ReworkCount: 0,
	}, nil
}

// CompleteTask implements `complete(task_id)` (§4.7).
func (e *Engine) CompleteTask(ctx context.Context, taskID string) (feedback *domain.Feedback, err error) {
	err = e.store.WithTx(ctx, func(ctx context.Context) error {
		task, terr := e.store.GetTask(ctx, taskID)
		if terr != nil {
			return terr
		}

		a, aerr := e.store.GetOpenAssignment(ctx, taskID)
		if aerr != nil {
			return aerr
		}
		if a == nil {
			return domain.ErrAlreadyCompleted
		}

		if has, herr := e.store.HasFeedback(ctx, taskID); herr != nil {
			return herr
		} else if has {
			return domain.ErrAlreadyCompleted
		}

		now := e.clock.Now()
		components := reward.Compute(reward.Inputs{
			Difficulty:     task.Difficulty,
			DueDate:        task.DueDate,
			AssignedAt:     a.AssignedAt,
			CompletionTime: now,
			ReworkCount:    a.ReworkCount,
		})

		f := domain.Feedback{
			ID:             uuid.New().String(),
			TaskID:         taskID,
			EmployeeID:     a.AssigneeID,
			RCompletion:    components.RCompletion,
			ROntime:        components.ROntime,
			RGoodBehaviour: components.RGoodBehaviour,
			POverdue:       components.POverdue,
			PRework:        components.PRework,
			PFailure:       components.PFailure,
			RawReward:      components.RawReward,
			RewardValue:    components.RewardValue,
			OverdueDays:    components.OverdueDays,
			Context:        a.Context,
			CreatedAt:      now,
		}
		if err := e.store.InsertFeedback(ctx, f); err != nil {
			return err
		}

		state, serr := e.store.LoadBanditState(ctx, a.AssigneeID)
		if serr != nil {
			return serr
		}
		if state == nil {
			s := domain.NewBanditState(a.AssigneeID, len(a.Context), e.cfg.Bandit.Lambda)
			state = &s
		}
		next := bandit.Update(*state, a.Context, f.RewardValue)
		if err := e.store.SaveBanditState(ctx, next); err != nil {
			return err
		}

		if err := e.store.CompleteAssignment(ctx, taskID, now); err != nil {
			return err
		}
		if err := e.store.SetTaskStatus(ctx, taskID, domain.TaskDone); err != nil {
			return err
		}
		if err := e.store.AdjustWorkload(ctx, a.AssigneeID, -1); err != nil {
			return err
		}

		feedback = &f
		return nil
	})

	if err == nil {
		metrics.BanditUpdates.Inc()
		metrics.RewardValue.Observe(feedback.RewardValue)
	}
	return feedback, err
}

// MarkRework implements the optional `mark_rework(task_id)` operation
// (§9 "Rework counter").
func (e *Engine) MarkRework(ctx context.Context, taskID string) error {
	return e.store.WithTx(ctx, func(ctx context.Context) error {
		return e.store.IncrementRework(ctx, taskID)
	})
}

// Recommend implements `recommend(task_id, k?)` (§6): a read-only
// preview of the top-k candidates and the UCB score each would
// receive, without writing an assignment or mutating bandit state.
func (e *Engine) Recommend(ctx context.Context, taskID string, k int) ([]Recommendation, error) {
	start := e.clock.Now()
	defer func() { metrics.RecommendLatency.Observe(e.clock.Now().Sub(start).Seconds()) }()

	if k <= 0 {
		k = e.cfg.SimilarityK
	}

	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	pool, err := e.store.ListActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoCandidates
	}

	filter := e.filter
	if k != e.cfg.SimilarityK {
		filter = similarity.New(e.embeddings, k)
	}
	scored := filter.TopK(ctx, *task, pool)

	out := make([]Recommendation, len(scored))
	for i, s := range scored {
		x := e.features.Extract(*task, s.Employee, s.Similarity)
		state, serr := e.store.LoadBanditState(ctx, s.Employee.ID)
		if serr != nil {
			return nil, serr
		}
		out[i] = Recommendation{
			EmployeeID: s.Employee.ID,
			Score:      e.bandit.Score(state, x),
			Context:    x,
		}
	}
	return out, nil
}

func (e *Engine) ensureTaskEmbeddings(ctx context.Context, task *domain.Task) error {
	if task.HasEmbeddings() || len(task.RequiredSkills) == 0 {
		return nil
	}
	vecs, err := e.embeddings.Embed(ctx, task.RequiredSkills)
	if err != nil {
		return fmt.Errorf("embed required skills: %w", err)
	}
	task.SkillEmbeddings = vecs
	return e.store.SaveTaskEmbeddings(ctx, task.ID, vecs)
}

func (e *Engine) ensureEmployeeEmbeddings(ctx context.Context, employee *domain.Employee) error {
	if employee.HasEmbeddings() || len(employee.Skills) == 0 {
		return nil
	}
	vecs, err := e.embeddings.Embed(ctx, employee.SkillNames())
	if err != nil {
		return fmt.Errorf("embed skills: %w", err)
	}
	employee.SkillEmbeddings = vecs
	return e.store.SaveEmployeeEmbeddings(ctx, employee.ID, vecs)
}

func outcomeLabel(err error) string {
	switch err {
	case domain.ErrAlreadyAssigned:
		return "already_assigned"
	case domain.ErrNoCandidates:
		return "no_candidates"
	case domain.ErrInvalidManualTarget:
		return "invalid_manual_target"
	case domain.ErrUnknownTask:
		return "unknown_task"
	default:
		return "error"
	}
}
