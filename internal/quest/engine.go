// Package quest generates quests, tracks their progress and completes them.
package quest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jeffanddom/organizex/internal/clock"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/progress"
	"github.com/jeffanddom/organizex/internal/rewards"
)

var (
	// ErrQuestNotFound is returned for unknown quest ids
	ErrQuestNotFound = errors.New("quest not found")
	// ErrAlreadyCompleted is returned when completing a completed quest
	ErrAlreadyCompleted = errors.New("quest already completed")
	// ErrQuestExpired is returned when completing a quest past its deadline
	ErrQuestExpired = errors.New("quest expired")
)

// Config holds quest engine configuration
type Config struct {
	DailyCount  int
	WeeklyCount int
	Clock       clock.Clock
	IDs         clock.IDGenerator
	// Rand picks templates. Access is serialised by Database.Exclusive.
	Rand *rand.Rand
}

// Engine manages the quest lifecycle
type Engine struct {
	db      *database.Database
	rewards *rewards.Engine
	config  Config
	logger  logging.Logger
}

// Completion is the outcome of completing a quest
type Completion struct {
	QuestID    string          `json:"questId"`
	QuestTitle string          `json:"questTitle"`
	XPGained   int64           `json:"xpGained"`
	LevelUp    bool            `json:"levelUp"`
	NewLevel   *int64          `json:"newLevel"`
	Satisfied  []string        `json:"satisfiedQuests"`
	Rewards    *rewards.Result `json:"rewards"`
}

// NewEngine creates a quest engine
func NewEngine(db *database.Database, rw *rewards.Engine, config Config, logger logging.Logger) *Engine {
	if config.DailyCount <= 0 {
		config.DailyCount = 4
	}
	if config.WeeklyCount <= 0 {
		config.WeeklyCount = 3
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.IDs == nil {
		config.IDs = clock.UUIDGenerator{}
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Engine{db: db, rewards: rw, config: config, logger: logger}
}

// Initialize generates today's daily quests if none were created today, the
// weekly set on the first day of the week if none exist for this week, and
// the persistent achievement quests.
func (e *Engine) Initialize(ctx context.Context) error {
	return e.db.Exclusive(ctx, func(repos *database.Repositories) error {
		return e.initialize(ctx, repos)
	})
}

func (e *Engine) initialize(ctx context.Context, repos *database.Repositories) error {
	now := e.config.Clock.Now()

	daily, err := repos.Quests.CountCreatedSince(ctx, database.CategoryDaily, clock.StartOfDay(now))
	if err != nil {
		return err
	}
	if daily == 0 {
		deadline := clock.EndOfDay(now.AddDate(0, 0, 1))
		if err := e.generate(ctx, repos, DailyTemplates, e.config.DailyCount, database.CategoryDaily, deadline, now); err != nil {
			return err
		}
		e.logger.Info("generated daily quests", "count", min(e.config.DailyCount, len(DailyTemplates)))
	}

	if now.Weekday() == time.Monday {
		weekStart := clock.StartOfWeek(now)
		weekly, err := repos.Quests.CountCreatedSince(ctx, database.CategoryWeekly, weekStart)
		if err != nil {
			return err
		}
		if weekly == 0 {
			deadline := clock.EndOfDay(weekStart.AddDate(0, 0, 6))
			if err := e.generate(ctx, repos, WeeklyTemplates, e.config.WeeklyCount, database.CategoryWeekly, deadline, now); err != nil {
				return err
			}
			e.logger.Info("generated weekly quests", "count", min(e.config.WeeklyCount, len(WeeklyTemplates)))
		}
	}

	for _, t := range AchievementTemplates {
		q := instantiate(t, AchievementQuestID(t.Title), database.CategoryAchievements, nil, now)
		inserted, err := repos.Quests.InsertIfAbsent(ctx, q)
		if err != nil {
			return err
		}
		if inserted {
			e.logger.Debug("created achievement quest", "id", q.ID)
		}
	}
	return nil
}

func (e *Engine) generate(ctx context.Context, repos *database.Repositories, templates []Template, n int, category string, deadline, now time.Time) error {
	n = min(n, len(templates))
	for _, i := range e.config.Rand.Perm(len(templates))[:n] {
		id := fmt.Sprintf("%s_%s", category, e.config.IDs.Suffix(8))
		if err := repos.Quests.Upsert(ctx, instantiate(templates[i], id, category, &deadline, now)); err != nil {
			return err
		}
	}
	return nil
}

func instantiate(t Template, id, category string, deadline *time.Time, now time.Time) *database.Quest {
	target := t.Target
	if target <= 0 {
		target = 1
	}
	return &database.Quest{
		ID:           id,
		Title:        t.Title,
		Description:  t.Description,
		Type:         t.Type,
		Difficulty:   t.Difficulty,
		XPReward:     t.XPReward,
		Status:       database.QuestStatusAvailable,
		Category:     category,
		Target:       target,
		Deadline:     deadline,
		Requirements: t.Requirements,
		CreatedAt:    now,
	}
}

// Complete marks a quest completed and applies its rewards. A quest can only
// be completed once.
func (e *Engine) Complete(ctx context.Context, id string) (*Completion, error) {
	var completion *Completion
	err := e.db.Exclusive(ctx, func(repos *database.Repositories) error {
		now := e.config.Clock.Now()

		q, err := repos.Quests.Get(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return ErrQuestNotFound
		}
		if err != nil {
			return err
		}

		switch {
		case q.Status == database.QuestStatusCompleted:
			return ErrAlreadyCompleted
		case q.Status == database.QuestStatusExpired:
			return ErrQuestExpired
		case q.Deadline != nil && now.After(*q.Deadline):
			return ErrQuestExpired
		}

		changed, err := repos.Quests.Transition(ctx, id, database.QuestStatusCompleted, &now,
			database.QuestStatusAvailable, database.QuestStatusInProgress)
		if err != nil {
			return err
		}
		if !changed {
			return ErrAlreadyCompleted
		}

		if _, err := rewards.AwardXP(ctx, repos, q.XPReward, "quest "+q.ID); err != nil {
			return err
		}
		if err := repos.Users.IncrementCompletedQuests(ctx); err != nil {
			return err
		}
		if err := repos.Stats.Increment(ctx, database.StatQuestsCompleted, 1); err != nil {
			return err
		}
		if err := repos.Activity.Append(ctx, &database.Activity{
			Type:        database.ActivityQuestCompleted,
			Description: "Completed quest: " + q.Title,
			XPGained:    q.XPReward,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		satisfied, err := e.Progress(ctx, repos, &progress.Event{
			Action:   database.ActionQuestCompleted,
			Count:    1,
			Category: q.Category,
		})
		if err != nil {
			return err
		}

		result, err := e.rewards.Check(ctx, repos, q.XPReward)
		if err != nil {
			return err
		}

		completion = &Completion{
			QuestID:    q.ID,
			QuestTitle: q.Title,
			XPGained:   q.XPReward,
			LevelUp:    result.LevelUp,
			NewLevel:   result.NewLevel,
			Satisfied:  satisfied,
			Rewards:    result,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("quest completed", "id", completion.QuestID, "xp", completion.XPGained, "level_up", completion.LevelUp)
	return completion, nil
}

// CheckProgress applies event to every open quest and returns the ids of
// quests that newly satisfy their requirement
func (e *Engine) CheckProgress(ctx context.Context, event *progress.Event) ([]string, error) {
	var satisfied []string
	err := e.db.Exclusive(ctx, func(repos *database.Repositories) error {
		var err error
		satisfied, err = e.Progress(ctx, repos, event)
		return err
	})
	return satisfied, err
}

// Progress is CheckProgress for callers already inside Exclusive. Progress is
// persisted and a quest moves from available to in_progress on its first
// advance.
func (e *Engine) Progress(ctx context.Context, repos *database.Repositories, event *progress.Event) ([]string, error) {
	now := e.config.Clock.Now()

	snap, err := repos.Snapshot(ctx, clock.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	open, err := repos.Quests.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	satisfied := []string{}
	for _, q := range open {
		if q.Deadline != nil && now.After(*q.Deadline) {
			continue
		}

		next := progress.Evaluate(q.Requirements, event, snap, q.Progress, q.Target)
		if next == q.Progress {
			continue
		}
		if err := repos.Quests.SaveProgress(ctx, q.ID, next, database.QuestStatusInProgress); err != nil {
			return nil, err
		}
		if next >= q.Target {
			satisfied = append(satisfied, q.ID)
		}
	}

	if len(satisfied) > 0 {
		e.logger.Info("quests ready to complete", "ids", satisfied)
	}
	return satisfied, nil
}

// Sweep expires open quests whose deadline has passed and regenerates the
// current quest sets. Partial progress on expired quests is forfeited.
func (e *Engine) Sweep(ctx context.Context) ([]string, error) {
	expired := []string{}
	err := e.db.Exclusive(ctx, func(repos *database.Repositories) error {
		now := e.config.Clock.Now()

		open, err := repos.Quests.ListOpen(ctx)
		if err != nil {
			return err
		}
		for _, q := range open {
			if q.Deadline == nil || !now.After(*q.Deadline) {
				continue
			}
			changed, err := repos.Quests.Transition(ctx, q.ID, database.QuestStatusExpired, nil,
				database.QuestStatusAvailable, database.QuestStatusInProgress)
			if err != nil {
				return err
			}
			if changed {
				expired = append(expired, q.ID)
			}
		}

		return e.initialize(ctx, repos)
	})
	if err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		e.logger.Info("expired quests", "count", len(expired))
	}
	return expired, nil
}

// All returns every quest grouped by category
func (e *Engine) All(ctx context.Context) (map[string][]*database.Quest, error) {
	quests, err := e.db.Quests.List(ctx, database.QuestFilter{})
	if err != nil {
		return nil, err
	}

	grouped := map[string][]*database.Quest{
		database.CategoryDaily:        {},
		database.CategoryWeekly:       {},
		database.CategoryAchievements: {},
	}
	for _, q := range quests {
		grouped[q.Category] = append(grouped[q.Category], q)
	}
	return grouped, nil
}

// Today returns up to five open quests whose deadline has not passed
func (e *Engine) Today(ctx context.Context) ([]*database.Quest, error) {
	now := e.config.Clock.Now()

	open, err := e.db.Quests.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	today := []*database.Quest{}
	for _, q := range open {
		if q.Deadline == nil || now.After(*q.Deadline) {
			continue
		}
		today = append(today, q)
		if len(today) == 5 {
			break
		}
	}
	return today, nil
}
