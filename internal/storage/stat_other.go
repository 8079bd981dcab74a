//go:build !linux

package storage

import (
	"io/fs"
	"time"
)

func createdAt(info fs.FileInfo) time.Time {
	return info.ModTime()
}
