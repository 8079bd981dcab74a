package classifier

import (
	"regexp"
	"strings"

	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/scanner"
)

const (
	extensionConfidence = 0.7
	patternConfidence   = 0.9
	keywordWeight       = 0.3
	keywordCap          = 0.8
	sizeInRange         = 0.1
	sizeFarOutside      = -0.2
	sizeNearOutside     = -0.1
	mimeMatch           = 0.1
	mimeGeneric         = 0.05
)

const (
	kb = int64(1024)
	mb = 1024 * kb
	gb = 1024 * mb
)

// accumulator carries the running prediction through the pipeline
type accumulator struct {
	label      filetype.Label
	confidence float64
}

func (a *accumulator) adjust(delta float64) {
	a.confidence = clamp(a.confidence + delta)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// rule is one scoring layer. Layers run in order and each sees the result
// of the previous one.
type rule struct {
	name  string
	apply func(record *scanner.FileRecord, acc *accumulator)
}

var defaultRules = []rule{
	{"extension", byExtension},
	{"pattern", byPattern},
	{"keyword", byKeyword},
	{"size", bySize},
	{"mime", byMIME},
}

type patternSet struct {
	label    filetype.Label
	patterns []*regexp.Regexp
}

var filenamePatterns = []patternSet{
	{filetype.Images, compile(
		`screenshot.*\.(png|jpg|jpeg)$`,
		`.*_photo\.(jpg|jpeg|png)$`,
		`img_\d+\.(jpg|jpeg|png)$`,
		`.*_wallpaper\.(jpg|jpeg|png)$`,
	)},
	{filetype.Documents, compile(
		`.*_resume\.(pdf|doc|docx)$`,
		`.*_cv\.(pdf|doc|docx)$`,
		`.*_report\.(pdf|doc|docx)$`,
		`.*_proposal\.(pdf|doc|docx)$`,
	)},
	{filetype.Code, compile(
		`.*\.(js|ts|jsx|tsx|py|java|cpp|c|h|hpp)$`,
		`.*\.(html|css|scss|sass|less)$`,
		`.*\.(php|rb|go|rs|kt|swift)$`,
	)},
	{filetype.Archives, compile(
		`.*_backup\.(zip|rar|tar|gz)$`,
		`.*_archive\.(zip|rar|tar|gz)$`,
	)},
}

// compile anchors each pattern at the start of the name and makes it case
// insensitive
func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)^` + p)
	}
	return out
}

type keywordSet struct {
	label    filetype.Label
	keywords []string
}

var filenameKeywords = []keywordSet{
	{filetype.Documents, []string{"invoice", "receipt", "contract", "agreement", "resume", "cv", "cover_letter", "report"}},
	{filetype.Images, []string{"photo", "picture", "image", "screenshot", "wallpaper", "avatar", "profile", "thumbnail"}},
	{filetype.Audio, []string{"music", "song", "audio", "sound", "podcast", "recording", "voice"}},
	{filetype.Videos, []string{"movie", "video", "clip", "recording", "tutorial", "presentation", "webinar"}},
}

type sizeRange struct {
	min, max int64
}

var sizeRanges = map[filetype.Label]sizeRange{
	filetype.Images:    {1 * kb, 50 * mb},
	filetype.Audio:     {100 * kb, 500 * mb},
	filetype.Videos:    {1 * mb, 10 * gb},
	filetype.Documents: {1 * kb, 100 * mb},
}

// expectedMIME lists the MIME top-level categories each label should carry
var expectedMIME = map[filetype.Label][]string{
	filetype.Images:    {"image"},
	filetype.Audio:     {"audio"},
	filetype.Videos:    {"video"},
	filetype.Documents: {"application", "text"},
	filetype.Code:      {"text"},
}

func byExtension(record *scanner.FileRecord, acc *accumulator) {
	acc.label = filetype.Lookup(record.Extension)
	acc.confidence = extensionConfidence
}

func byPattern(record *scanner.FileRecord, acc *accumulator) {
	for _, set := range filenamePatterns {
		for _, p := range set.patterns {
			if p.MatchString(record.Name) {
				if patternConfidence > acc.confidence {
					acc.label = set.label
					acc.confidence = patternConfidence
				}
				return
			}
		}
	}
}

func byKeyword(record *scanner.FileRecord, acc *accumulator) {
	name := strings.ToLower(record.Name)

	var best filetype.Label
	bestScore := 0.0
	for _, set := range filenameKeywords {
		score := 0.0
		for _, keyword := range set.keywords {
			if strings.Contains(name, keyword) {
				score += keywordWeight
			}
		}
		if score > bestScore {
			best, bestScore = set.label, score
		}
	}

	if bestScore > keywordCap {
		bestScore = keywordCap
	}
	if bestScore > acc.confidence {
		acc.label = best
		acc.confidence = bestScore
	}
}

func bySize(record *scanner.FileRecord, acc *accumulator) {
	r, ok := sizeRanges[acc.label]
	if !ok {
		return
	}

	switch size := record.Size; {
	case size >= r.min && size <= r.max:
		acc.adjust(sizeInRange)
	case size < r.min || size > 2*r.max:
		acc.adjust(sizeFarOutside)
	default:
		acc.adjust(sizeNearOutside)
	}
}

func byMIME(record *scanner.FileRecord, acc *accumulator) {
	mt, ok := filetype.MIME(record.Extension)
	if !ok {
		return
	}
	category, _, _ := strings.Cut(mt, "/")

	if expected, ok := expectedMIME[acc.label]; ok {
		for _, e := range expected {
			if category == e {
				acc.adjust(mimeMatch)
				return
			}
		}
		return
	}

	if acc.label == filetype.Other && (category == "application" || category == "text") {
		acc.adjust(mimeGeneric)
	}
}
