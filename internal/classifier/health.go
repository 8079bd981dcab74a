package classifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/scanner"
)

// Health scores how well organised a folder is
type Health struct {
	Score           int      `json:"healthScore"`
	Recommendations []string `json:"recommendations"`
	Issues          []string `json:"issues"`
	FilesAnalyzed   int64    `json:"totalFilesAnalyzed"`
	TypeDiversity   int      `json:"fileTypeDiversity"`
}

const maxRecommendations = 3

// FolderHealth scores a type distribution. An empty folder is perfectly
// healthy.
func FolderHealth(fileTypes map[filetype.Label]int, totalFiles int64) *Health {
	health := &Health{
		Score:           100,
		Recommendations: []string{},
		Issues:          []string{},
		FilesAnalyzed:   totalFiles,
	}
	if totalFiles <= 0 {
		return health
	}

	present := presentLabels(fileTypes)
	health.TypeDiversity = len(present)

	if len(present) > 5 {
		health.Score -= 20
		health.Issues = append(health.Issues, fmt.Sprintf("Too many file types (%d) in one folder", len(present)))
		health.Recommendations = append(health.Recommendations, "Consider organizing files into subfolders by type")
	}

	// dominant types, largest first
	sort.SliceStable(present, func(i, j int) bool { return fileTypes[present[i]] > fileTypes[present[j]] })
	for _, label := range present {
		count := fileTypes[label]
		if float64(count)/float64(totalFiles) > 0.3 && count > 10 {
			name := strings.ToLower(string(label))
			health.Score -= 15
			health.Issues = append(health.Issues, fmt.Sprintf("Many %s files (%d) not organized", name, count))
			health.Recommendations = append(health.Recommendations, fmt.Sprintf("Create a dedicated folder for %s", name))
		}
	}

	if len(present) > 3 && totalFiles > 20 {
		health.Score -= 10
		health.Issues = append(health.Issues, "Mixed file types indicate poor organization")
		health.Recommendations = append(health.Recommendations, "Use the auto-organize feature to sort files by type")
	}

	if health.Score < 0 {
		health.Score = 0
	}
	if len(health.Recommendations) > maxRecommendations {
		health.Recommendations = health.Recommendations[:maxRecommendations]
	}
	return health
}

// presentLabels returns labels with a non-zero count in label order
func presentLabels(fileTypes map[filetype.Label]int) []filetype.Label {
	var present []filetype.Label
	for _, label := range filetype.Labels() {
		if fileTypes[label] > 0 {
			present = append(present, label)
		}
	}
	for label, count := range fileTypes {
		if count > 0 && !filetype.Valid(label) {
			present = append(present, label)
		}
	}
	return present
}

// Action is a suggested cleanup step
type Action struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	FileType    filetype.Label `json:"fileType,omitempty"`
	FileCount   int            `json:"fileCount"`
	EstimatedXP int            `json:"estimatedXp"`
}

const (
	largeFileThreshold = 100 * mb
	maxActions         = 5
)

// CleanupActions suggests up to five actions for a scanned folder, most
// rewarding first
func CleanupActions(result *scanner.ScanResult) []Action {
	actions := []Action{}
	if result == nil {
		return actions
	}

	for _, label := range presentLabels(result.FileTypes) {
		count := result.FileTypes[label]
		if count < 10 {
			continue
		}
		actions = append(actions, Action{
			Type:        "organize",
			Description: fmt.Sprintf("Organize %d %s files into a dedicated folder", count, strings.ToLower(string(label))),
			FileType:    label,
			FileCount:   count,
			EstimatedXP: count * 2,
		})
	}

	var large int
	var largeBytes int64
	for _, record := range result.Largest {
		if record.Size > largeFileThreshold {
			large++
			largeBytes += record.Size
		}
	}
	if large > 0 {
		actions = append(actions, Action{
			Type:        "review_large_files",
			Description: fmt.Sprintf("Review %d large files (%s) to free up space", large, humanize.IBytes(uint64(largeBytes))),
			FileCount:   large,
			EstimatedXP: large * 5,
		})
	}

	sort.SliceStable(actions, func(i, j int) bool { return actions[i].EstimatedXP > actions[j].EstimatedXP })
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	return actions
}

// SmartFolderNames proposes folder names for files of one type based on
// what their names suggest
func SmartFolderNames(label filetype.Label, records []*scanner.FileRecord) []string {
	anyName := func(words ...string) bool {
		for _, r := range records {
			name := strings.ToLower(r.Name)
			for _, w := range words {
				if strings.Contains(name, w) {
					return true
				}
			}
		}
		return false
	}

	switch label {
	case filetype.Images:
		switch {
		case anyName("screenshot"):
			return []string{"Screenshots", "Photos", "Images"}
		case anyName("wallpaper"):
			return []string{"Wallpapers", "Images", "Pictures"}
		default:
			return []string{"Photos", "Images", "Pictures"}
		}
	case filetype.Documents:
		switch {
		case anyName("invoice", "receipt"):
			return []string{"Financial Documents", "Receipts", "Documents"}
		case anyName("resume", "cv"):
			return []string{"Career Documents", "Resumes", "Documents"}
		default:
			return []string{"Documents", "Files", "Papers"}
		}
	case filetype.Audio:
		return []string{"Music", "Audio", "Sound Files"}
	case filetype.Videos:
		return []string{"Videos", "Movies", "Media"}
	case filetype.Archives:
		return []string{"Archives", "Compressed Files", "Backups"}
	case filetype.Code:
		return []string{"Code", "Development", "Projects"}
	default:
		return []string{string(label), "Files"}
	}
}
