package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeffanddom/organizex/internal/coordinator"
	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/rewards"
)

// printer writes human-readable output to terminals and JSON everywhere else
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(cmd *cobra.Command) *printer {
	asJSON, _ := cmd.Flags().GetBool("json")
	if !asJSON {
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			asJSON = !term.IsTerminal(int(f.Fd()))
		}
	}
	return &printer{w: cmd.OutOrStdout(), json: asJSON}
}

// emit writes v as JSON, or calls human when writing to a terminal
func (p *printer) emit(v any, human func()) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) fileTypes(counts map[filetype.Label]int) {
	labels := make([]filetype.Label, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	for _, label := range labels {
		p.printf("  %-14s %s\n", label, humanize.Comma(int64(counts[label])))
	}
}

func (p *printer) progression(prog coordinator.Progression) {
	if prog.XPGained == 0 {
		return
	}
	p.printf("✓ +%d XP\n", prog.XPGained)
	if len(prog.SatisfiedQuests) > 0 {
		p.printf("  Quests ready to complete: %s\n", strings.Join(prog.SatisfiedQuests, ", "))
	}
	p.rewards(prog.Rewards)
}

func (p *printer) rewards(result *rewards.Result) {
	if result == nil {
		return
	}
	if result.LevelUp && result.NewLevel != nil {
		p.printf("🎉 Level up! You are now level %d\n", *result.NewLevel)
	}
	for _, id := range result.NewAchievements {
		p.printf("🏆 Achievement unlocked: %s\n", id)
	}
	for _, id := range result.NewBadges {
		p.printf("🎖  Badge earned: %s\n", id)
	}
}

func (p *printer) errors(errs []string) {
	for _, e := range errs {
		p.printf("  ✗ %s\n", e)
	}
}
