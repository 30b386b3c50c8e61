// Package pathutil resolves mount-relative filenames to real paths and
// reads the metadata the rest of the system needs: mtime, ctime, size,
// and an on-demand CRC-32 checksum.
package pathutil

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName is returned by Wrap when name contains a path
// separator or is otherwise not a bare filename.
var ErrInvalidName = errors.New("pathutil: name must not contain path separators")

// ErrNotFound is returned by Stat and CRC32 when the target does not exist.
var ErrNotFound = errors.New("pathutil: not found")

// Info captures the metadata the DFS needs about a file: modification
// time, change time, and size. Times are seconds since the Unix epoch.
type Info struct {
	Mtime int64
	Ctime int64
	Size  int64
}

// Wrap concatenates mount with name, rejecting any name that could
// escape the mount directory. name must never contain "/" or "\\",
// must not be "." or "..", and must not be empty.
func Wrap(mount, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(mount, name), nil
}

// Stat reads mtime/ctime/size for the file at fullPath.
func Stat(fullPath string) (Info, error) {
	fi, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, ErrNotFound
		}
		return Info{}, err
	}
	return infoFromFileInfo(fi), nil
}

func infoFromFileInfo(fi os.FileInfo) Info {
	return Info{
		Mtime: fi.ModTime().Unix(),
		Ctime: ctime(fi),
		Size:  fi.Size(),
	}
}

// SetMtime sets both the modification time and the access time of
// fullPath to the given Unix timestamp.
func SetMtime(fullPath string, mtime int64) error {
	t := time.Unix(mtime, 0)
	return os.Chtimes(fullPath, t, t)
}

// crcTable is computed once at package init, per spec.
var crcTable = crc32.MakeTable(crc32.IEEE)

// CRC32 computes the CRC-32 (IEEE polynomial) checksum of the file at
// fullPath, reading it sequentially.
func CRC32(fullPath string) (uint32, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	defer f.Close()

	h := crc32.New(crcTable)
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}

// IsRegular reports whether fi describes a regular file, filtering out
// directories, symlinks, sockets, devices, and other non-regular
// entries the sync engine must never attempt to transfer.
func IsRegular(fi os.FileInfo) bool {
	return fi.Mode().IsRegular()
}
