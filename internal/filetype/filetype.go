// Package filetype maps file extensions to the coarse type labels used
// across scanning, classification and organisation.
package filetype

import (
	"path/filepath"
	"strings"
)

// Label is a coarse file type. Labels double as folder names when
// organising.
type Label string

const (
	Images        Label = "Images"
	Documents     Label = "Documents"
	Spreadsheets  Label = "Spreadsheets"
	Presentations Label = "Presentations"
	Videos        Label = "Videos"
	Audio         Label = "Audio"
	Archives      Label = "Archives"
	Code          Label = "Code"
	Executables   Label = "Executables"
	Other         Label = "Other"
)

var labels = []Label{
	Images, Documents, Spreadsheets, Presentations, Videos,
	Audio, Archives, Code, Executables, Other,
}

var extensions = map[Label][]string{
	Images:        {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico", ".tiff"},
	Documents:     {".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".pages"},
	Spreadsheets:  {".xls", ".xlsx", ".csv", ".ods", ".numbers"},
	Presentations: {".ppt", ".pptx", ".odp", ".key"},
	Videos:        {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"},
	Audio:         {".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a"},
	Archives:      {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz"},
	Code:          {".js", ".py", ".html", ".css", ".java", ".cpp", ".c", ".php", ".rb", ".go"},
	Executables:   {".exe", ".msi", ".dmg", ".pkg", ".deb", ".rpm", ".app"},
}

var byExtension = func() map[string]Label {
	m := make(map[string]Label)
	for label, exts := range extensions {
		for _, ext := range exts {
			m[ext] = label
		}
	}
	return m
}()

var mimeTypes = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
	".gif": "image/gif", ".bmp": "image/bmp", ".svg": "image/svg+xml",
	".webp": "image/webp", ".ico": "image/vnd.microsoft.icon", ".tiff": "image/tiff",

	".pdf": "application/pdf", ".doc": "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain", ".rtf": "application/rtf",
	".odt": "application/vnd.oasis.opendocument.text",

	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv", ".ods": "application/vnd.oasis.opendocument.spreadsheet",

	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odp":  "application/vnd.oasis.opendocument.presentation",

	".mp4": "video/mp4", ".avi": "video/x-msvideo", ".mkv": "video/x-matroska",
	".mov": "video/quicktime", ".wmv": "video/x-ms-wmv", ".flv": "video/x-flv",
	".webm": "video/webm", ".m4v": "video/x-m4v",

	".mp3": "audio/mpeg", ".wav": "audio/x-wav", ".flac": "audio/flac",
	".aac": "audio/aac", ".ogg": "audio/ogg", ".wma": "audio/x-ms-wma", ".m4a": "audio/mp4",

	".zip": "application/zip", ".rar": "application/vnd.rar",
	".7z": "application/x-7z-compressed", ".tar": "application/x-tar",
	".gz": "application/gzip", ".bz2": "application/x-bzip2", ".xz": "application/x-xz",

	".js": "text/javascript", ".ts": "text/x-typescript", ".py": "text/x-python",
	".html": "text/html", ".htm": "text/html", ".css": "text/css",
	".java": "text/x-java", ".c": "text/x-c", ".h": "text/x-c", ".cpp": "text/x-c++",
	".hpp": "text/x-c++", ".php": "application/x-httpd-php", ".rb": "text/x-ruby",
	".go": "text/x-go", ".rs": "text/x-rust",

	".exe": "application/vnd.microsoft.portable-executable", ".msi": "application/x-msi",
	".dmg": "application/x-apple-diskimage", ".deb": "application/vnd.debian.binary-package",
	".rpm": "application/x-rpm",

	".json": "application/json", ".xml": "text/xml", ".md": "text/markdown",
	".log": "text/plain", ".yaml": "application/yaml", ".yml": "application/yaml",
}

// Labels returns every label in a stable order, Other last.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}

// Organizable returns the labels that quick sort moves into folders.
func Organizable() []Label {
	return labels[:len(labels)-1]
}

// Valid reports whether l is a known label
func Valid(l Label) bool {
	for _, known := range labels {
		if known == l {
			return true
		}
	}
	return false
}

// Ext returns the lowercased extension of name including the dot.
func Ext(name string) string {
	_, ext := SplitExt(name)
	return strings.ToLower(ext)
}

// SplitExt splits name into stem and extension. A leading dot starts the
// stem, so ".bashrc" has no extension.
func SplitExt(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// Lookup returns the label for ext, or Other.
func Lookup(ext string) Label {
	if label, ok := byExtension[strings.ToLower(ext)]; ok {
		return label
	}
	return Other
}

// MIME returns the declared content type for ext.
func MIME(ext string) (string, bool) {
	mt, ok := mimeTypes[strings.ToLower(ext)]
	return mt, ok
}
