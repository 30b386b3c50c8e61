//go:build !linux

package pathutil

import "os"

// ctime falls back to mtime on platforms where this package does not
// decode a native stat structure for the inode change time.
func ctime(fi os.FileInfo) int64 {
	return fi.ModTime().Unix()
}
