//go:build linux

package storage

import (
	"io/fs"
	"syscall"
	"time"
)

// createdAt returns the inode change time; birth time is not exposed
// through syscall.Stat_t on Linux.
func createdAt(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}
