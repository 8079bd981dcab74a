package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeffanddom/organizex/internal/coordinator"
	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/rewards"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

type pathRequest struct {
	Path string `json:"path"`
}

type organizeRequest struct {
	Path  string          `json:"path"`
	Rules map[string]bool `json:"rules"`
}

type deleteRequest struct {
	Files []string `json:"files"`
}

type checkRequest struct {
	XPGained int64 `json:"xpGained"`
}

// handleHealth reports database reachability and in-flight operations
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}

	pool := s.db.PoolStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"running":   s.coordinator.Running(),
		"connections": map[string]int{
			"open":  pool.OpenConnections,
			"inUse": pool.InUse,
			"idle":  pool.Idle,
		},
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.Users.Get(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats.Get(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.quests.All(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load quests", err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

func (s *Server) handleTodaysQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.quests.Today(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load today's quests", err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

func (s *Server) handleQuestSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.quests.Suggestions(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	completion, err := s.quests.Complete(r.Context(), id)
	if err != nil {
		s.fail(w, r, "Failed to complete quest", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*quest.Completion
	}{true, completion})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	report, err := s.coordinator.Scan(r.Context(), req.Path)
	if err != nil {
		s.fail(w, r, "Failed to scan folder", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	report, err := s.coordinator.ClassifyPath(r.Context(), req.Path)
	if err != nil {
		s.fail(w, r, "Failed to classify files", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*coordinator.ClassifyReport
	}{true, report})
}

func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	var req organizeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	rules := make(map[filetype.Label]bool, len(req.Rules))
	for name, enabled := range req.Rules {
		label := filetype.Label(name)
		if !filetype.Valid(label) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown file type: %s", name))
			return
		}
		rules[label] = enabled
	}

	report, err := s.coordinator.Organize(r.Context(), req.Path, rules)
	if err != nil {
		s.fail(w, r, "Failed to organize files", err)
		return
	}
	writeJSON(w, http.StatusOK, organizeResponse(report))
}

func (s *Server) handleQuickSort(w http.ResponseWriter, r *http.Request) {
	report, err := s.coordinator.QuickSort(r.Context(), chi.URLParam(r, "folder"))
	if err != nil {
		s.fail(w, r, "Failed to quick sort folder", err)
		return
	}
	writeJSON(w, http.StatusOK, organizeResponse(report))
}

func organizeResponse(report *coordinator.OrganizeReport) any {
	return struct {
		Success bool `json:"success"`
		*coordinator.OrganizeReport
	}{true, report}
}

func (s *Server) handleScanDuplicates(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	report, err := s.coordinator.FindDuplicates(r.Context(), req.Path)
	if err != nil {
		s.fail(w, r, "Failed to scan for duplicates", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool `json:"success"`
		Duplicates any  `json:"duplicates"`
		Summary    any  `json:"summary"`
	}{true, report.Groups, report.Summary})
}

func (s *Server) handleDeleteDuplicates(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, "files is required")
		return
	}

	report, err := s.coordinator.DeleteFiles(r.Context(), req.Files)
	if err != nil {
		s.fail(w, r, "Failed to delete files", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*coordinator.DeleteReport
	}{true, report})
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.rewards.ListBadges(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load badges", err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := s.rewards.ListAchievements(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (s *Server) handleRewardsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.rewards.Summary(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to load rewards summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCheckRewards(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.XPGained < 0 {
		writeError(w, http.StatusBadRequest, "xpGained must not be negative")
		return
	}

	result, err := s.rewards.CheckRewards(r.Context(), req.XPGained)
	if err != nil {
		s.fail(w, r, "Failed to check rewards", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDailyBonus(w http.ResponseWriter, r *http.Request) {
	bonus, err := s.rewards.DailyBonus(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to check daily bonus", err)
		return
	}
	writeJSON(w, http.StatusOK, bonus)
}

func (s *Server) handleClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	claim, err := s.rewards.ClaimDailyBonus(r.Context())
	if err != nil {
		s.fail(w, r, "Failed to claim daily bonus", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*rewards.Claim
	}{true, claim})
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	activity, err := s.db.Activity.Recent(r.Context(), limit)
	if err != nil {
		s.fail(w, r, "Failed to load activity", err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"running": s.coordinator.Running(),
	})
}

func (s *Server) handleCancelOperation(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	if err := s.coordinator.Cancel(req.Path); err != nil {
		s.fail(w, r, "Failed to cancel operation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"cancelled": req.Path,
	})
}
