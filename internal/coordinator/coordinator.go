// Package coordinator runs file operations on behalf of the CLI and the
// JSON server and records the progression they earn.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jeffanddom/organizex/internal/classifier"
	"github.com/jeffanddom/organizex/internal/clock"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/duplicates"
	"github.com/jeffanddom/organizex/internal/fileops"
	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/progress"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/rewards"
	"github.com/jeffanddom/organizex/internal/scanner"
	"github.com/jeffanddom/organizex/internal/storage"
)

// XP earned per file
const (
	XPPerFileOrganized = 5
	XPPerFileDeleted   = 10
)

var (
	// ErrRootBusy is returned when another operation holds the same root
	ErrRootBusy = errors.New("operation already running for this folder")
	// ErrTooBusy is returned when the concurrent operation limit is reached
	ErrTooBusy = errors.New("concurrent operation limit reached")
	// ErrUnknownFolder is returned by QuickSort for names that are not aliases
	ErrUnknownFolder = errors.New("unknown folder type")
	// ErrNotRunning is returned by Cancel for idle folders
	ErrNotRunning = errors.New("no operation running")
)

// Coordinator serialises file operations per folder and applies their
// rewards
type Coordinator struct {
	db         *database.Database
	scanner    *scanner.Engine
	classifier *classifier.Classifier
	files      *fileops.Operator
	quests     *quest.Engine
	rewards    *rewards.Engine
	aliases    *storage.Aliases
	clock      clock.Clock
	logger     logging.Logger

	maxConcurrentOps int
	mu               sync.Mutex
	running          map[string]context.CancelFunc // root -> cancel function
}

// Config holds coordinator configuration
type Config struct {
	MaxConcurrentOps int // Maximum number of concurrent file operations
	Scanner          scanner.Config
	Aliases          *storage.Aliases
	Clock            clock.Clock
}

// Progression is what an operation earned
type Progression struct {
	XPGained        int64           `json:"xpGained"`
	SatisfiedQuests []string        `json:"satisfiedQuests"`
	Rewards         *rewards.Result `json:"rewards"`
}

// ScanReport is a scan with folder health and suggested actions
type ScanReport struct {
	*scanner.ScanResult
	Health  *classifier.Health  `json:"health"`
	Actions []classifier.Action `json:"actions"`
}

// DuplicateReport lists duplicate groups below a root
type DuplicateReport struct {
	Root    string              `json:"path"`
	Groups  []*duplicates.Group `json:"groups"`
	Summary duplicates.Summary  `json:"summary"`
}

// ClassifyReport is a classification of every file below a root
type ClassifyReport struct {
	Root string `json:"path"`
	*classifier.Report
	SmartFolders map[filetype.Label][]string `json:"smartFolders"`
}

// OrganizeReport is an organize result with the progression it earned
type OrganizeReport struct {
	*fileops.OrganizeResult
	Progression
}

// DeleteReport is a delete result with the progression it earned
type DeleteReport struct {
	*fileops.DeleteResult
	Progression
}

// New creates a coordinator
func New(db *database.Database, quests *quest.Engine, rw *rewards.Engine, config Config, logger logging.Logger) *Coordinator {
	if config.MaxConcurrentOps <= 0 {
		config.MaxConcurrentOps = 3
	}
	if config.Aliases == nil {
		config.Aliases = storage.DefaultAliases(nil)
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Coordinator{
		db:               db,
		scanner:          scanner.NewEngine(config.Scanner, logger),
		classifier:       classifier.New(logger),
		files:            fileops.New(logger),
		quests:           quests,
		rewards:          rw,
		aliases:          config.Aliases,
		clock:            config.Clock,
		logger:           logger,
		maxConcurrentOps: config.MaxConcurrentOps,
		running:          make(map[string]context.CancelFunc),
	}
}

// Bootstrap seeds the reward catalogs and generates the current quests
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	if err := c.rewards.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed rewards: %w", err)
	}
	if err := c.quests.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize quests: %w", err)
	}
	return nil
}

// Resolve maps aliases such as "downloads" or "~" to absolute paths
func (c *Coordinator) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(c.aliases.Resolve(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// acquire registers roots as busy. Either all roots are acquired or none.
func (c *Coordinator) acquire(ctx context.Context, roots ...string) (context.Context, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range roots {
		if _, running := c.running[root]; running {
			return nil, nil, fmt.Errorf("%s: %w", root, ErrRootBusy)
		}
	}
	if len(c.running)+len(roots) > c.maxConcurrentOps {
		return nil, nil, fmt.Errorf("%w (%d)", ErrTooBusy, c.maxConcurrentOps)
	}

	opCtx, cancel := context.WithCancel(ctx)
	for _, root := range roots {
		c.running[root] = cancel
	}

	release := func() {
		c.mu.Lock()
		for _, root := range roots {
			delete(c.running, root)
		}
		c.mu.Unlock()
		cancel()
	}
	return opCtx, release, nil
}

// Running returns the roots with an operation in flight
func (c *Coordinator) Running() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	roots := make([]string, 0, len(c.running))
	for root := range c.running {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Cancel stops the operation running on path, which may be an alias. The
// operation returns once it notices the cancellation.
func (c *Coordinator) Cancel(path string) error {
	root, err := c.Resolve(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cancel, running := c.running[root]
	if !running {
		return fmt.Errorf("%s: %w", root, ErrNotRunning)
	}
	cancel()
	c.logger.Info("operation cancelled", "root", root)
	return nil
}

// Scan aggregates the tree below path
func (c *Coordinator) Scan(ctx context.Context, path string) (*ScanReport, error) {
	root, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	opCtx, release, err := c.acquire(ctx, root)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := c.scanner.Scan(opCtx, root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	return &ScanReport{
		ScanResult: result,
		Health:     classifier.FolderHealth(result.FileTypes, result.TotalFiles),
		Actions:    classifier.CleanupActions(result),
	}, nil
}

// FindDuplicates groups files with identical content below path
func (c *Coordinator) FindDuplicates(ctx context.Context, path string) (*DuplicateReport, error) {
	root, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	opCtx, release, err := c.acquire(ctx, root)
	if err != nil {
		return nil, err
	}
	defer release()

	records, summary, err := c.scanner.Collect(opCtx, root)
	if err != nil {
		return nil, fmt.Errorf("duplicate scan failed: %w", err)
	}

	groups := duplicates.Find(records)
	c.logger.Info("duplicate scan complete", "root", summary.Root, "groups", len(groups))
	return &DuplicateReport{
		Root:    summary.Root,
		Groups:  groups,
		Summary: duplicates.Summarize(groups),
	}, nil
}

// ClassifyMany classifies records that were already collected
func (c *Coordinator) ClassifyMany(records []*scanner.FileRecord) *classifier.Report {
	return c.classifier.ClassifyMany(records)
}

// ClassifyPath classifies every file below path and proposes folder names
// for the types found
func (c *Coordinator) ClassifyPath(ctx context.Context, path string) (*ClassifyReport, error) {
	root, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	opCtx, release, err := c.acquire(ctx, root)
	if err != nil {
		return nil, err
	}
	defer release()

	records, summary, err := c.scanner.Collect(opCtx, root)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	report := c.classifier.ClassifyMany(records)
	byType := make(map[filetype.Label][]*scanner.FileRecord)
	for i, cl := range report.Classifications {
		byType[cl.Type] = append(byType[cl.Type], records[i])
	}
	smart := make(map[filetype.Label][]string, len(byType))
	for label, group := range byType {
		smart[label] = classifier.SmartFolderNames(label, group)
	}

	return &ClassifyReport{Root: summary.Root, Report: report, SmartFolders: smart}, nil
}

// Organize moves files directly inside path into per-type folders and
// awards XP for every file moved
func (c *Coordinator) Organize(ctx context.Context, path string, rules map[filetype.Label]bool) (*OrganizeReport, error) {
	root, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	opCtx, release, err := c.acquire(ctx, root)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := c.files.Organize(opCtx, root, rules)
	if err != nil {
		return nil, fmt.Errorf("organize failed: %w", err)
	}

	// moved files stay moved even if recording fails
	prog, err := c.recordOrganize(ctx, result)
	if err != nil {
		return nil, err
	}
	return &OrganizeReport{OrganizeResult: result, Progression: *prog}, nil
}

// QuickSort organizes a well-known folder such as "downloads" with every
// type enabled
func (c *Coordinator) QuickSort(ctx context.Context, folder string) (*OrganizeReport, error) {
	if !c.aliases.IsAlias(folder) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFolder, folder)
	}

	rules := make(map[filetype.Label]bool)
	for _, label := range filetype.Organizable() {
		rules[label] = true
	}
	return c.Organize(ctx, folder, rules)
}

// DeleteFiles removes paths and awards XP for every file deleted. Each
// parent folder is held for the duration.
func (c *Coordinator) DeleteFiles(ctx context.Context, paths []string) (*DeleteReport, error) {
	seen := make(map[string]bool)
	var roots []string
	for _, p := range paths {
		dir, err := filepath.Abs(filepath.Dir(p))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
	}
	sort.Strings(roots)

	opCtx, release, err := c.acquire(ctx, roots...)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := c.files.Delete(opCtx, paths)
	if err != nil {
		return nil, fmt.Errorf("delete failed: %w", err)
	}

	prog, err := c.recordDelete(ctx, result)
	if err != nil {
		return nil, err
	}
	return &DeleteReport{DeleteResult: result, Progression: *prog}, nil
}

func (c *Coordinator) recordOrganize(ctx context.Context, result *fileops.OrganizeResult) (*Progression, error) {
	if result.Organized == 0 {
		return &Progression{SatisfiedQuests: []string{}}, nil
	}

	fileTypes := make(map[string]int64, len(result.FileTypes))
	for label, n := range result.FileTypes {
		fileTypes[string(label)] = n
	}
	folder := filepath.Base(result.Root)

	return c.record(ctx, result.Organized*XPPerFileOrganized,
		func(repos *database.Repositories) error {
			if err := repos.Stats.Increment(ctx, database.StatFilesOrganized, result.Organized); err != nil {
				return err
			}
			return repos.Stats.Increment(ctx, database.StatFoldersCleaned, 1)
		},
		&database.Activity{
			Type:        database.ActivityFilesOrganized,
			Description: fmt.Sprintf("Organized %d files in %s", result.Organized, folder),
		},
		&progress.Event{
			Action:    database.ActionFilesOrganized,
			Count:     result.Organized,
			Folder:    folder,
			FileTypes: fileTypes,
		})
}

func (c *Coordinator) recordDelete(ctx context.Context, result *fileops.DeleteResult) (*Progression, error) {
	if result.Deleted == 0 {
		return &Progression{SatisfiedQuests: []string{}}, nil
	}

	return c.record(ctx, result.Deleted*XPPerFileDeleted,
		func(repos *database.Repositories) error {
			if err := repos.Stats.Increment(ctx, database.StatDuplicatesRemoved, result.Deleted); err != nil {
				return err
			}
			return repos.Stats.Increment(ctx, database.StatSpaceFreed, result.BytesFreed)
		},
		&database.Activity{
			Type:        database.ActivityDuplicatesRemoved,
			Description: fmt.Sprintf("Removed %d duplicate files", result.Deleted),
		},
		&progress.Event{
			Action: database.ActionDuplicatesRemoved,
			Count:  result.Deleted,
			Bytes:  result.BytesFreed,
		})
}

// record applies the stats, XP, activity, quest progress and rewards check
// of one operation in a single transaction
func (c *Coordinator) record(ctx context.Context, xp int64, updateStats func(*database.Repositories) error, activity *database.Activity, event *progress.Event) (*Progression, error) {
	var prog *Progression
	err := c.db.Exclusive(ctx, func(repos *database.Repositories) error {
		if err := updateStats(repos); err != nil {
			return err
		}
		if _, err := rewards.AwardXP(ctx, repos, xp, string(activity.Type)); err != nil {
			return err
		}

		activity.XPGained = xp
		activity.CreatedAt = c.clock.Now()
		if err := repos.Activity.Append(ctx, activity); err != nil {
			return err
		}

		satisfied, err := c.quests.Progress(ctx, repos, event)
		if err != nil {
			return err
		}
		result, err := c.rewards.Check(ctx, repos, xp)
		if err != nil {
			return err
		}

		prog = &Progression{XPGained: xp, SatisfiedQuests: satisfied, Rewards: result}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}
	return prog, nil
}
