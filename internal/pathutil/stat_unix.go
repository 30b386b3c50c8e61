//go:build linux

package pathutil

import (
	"os"
	"syscall"
)

// ctime extracts the inode change time from the platform-specific
// stat structure. Falls back to mtime if the underlying Sys() value
// isn't a *syscall.Stat_t (e.g. some virtual filesystems).
func ctime(fi os.FileInfo) int64 {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.ModTime().Unix()
	}
	return st.Ctim.Sec
}
