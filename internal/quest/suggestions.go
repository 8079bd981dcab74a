package quest

import (
	"context"

	"github.com/jeffanddom/organizex/internal/database"
)

// Suggestion is a hint about what to do next
type Suggestion struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Suggestions returns up to three hints based on the user's activity
func (e *Engine) Suggestions(ctx context.Context) ([]Suggestion, error) {
	stats, err := e.db.Stats.Get(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := e.db.Quests.List(ctx, database.QuestFilter{
		Status:   database.QuestStatusCompleted,
		Category: database.CategoryDaily,
	})
	if err != nil {
		return nil, err
	}

	suggestions := []Suggestion{}
	if stats.FilesOrganized < 10 {
		suggestions = append(suggestions, Suggestion{
			Type:        "beginner",
			Title:       "Getting Started",
			Description: "Try organizing your Downloads folder first",
			Priority:    "high",
		})
	}
	if stats.DuplicatesRemoved == 0 {
		suggestions = append(suggestions, Suggestion{
			Type:        "duplicate_detection",
			Title:       "Find Duplicates",
			Description: "Scan for duplicate files to free up space",
			Priority:    "medium",
		})
	}
	if len(completed) > 5 {
		suggestions = append(suggestions, Suggestion{
			Type:        "advanced",
			Title:       "Take on Weekly Challenges",
			Description: "You're ready for bigger organization projects",
			Priority:    "medium",
		})
	}

	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions, nil
}
