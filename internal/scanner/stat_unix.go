//go:build unix

package scanner

import (
	"fmt"
	"io/fs"
	"syscall"
)

// statIdentity extracts the inode/device pair used to break symlink loops
// and stored as File.inode/File.device. Change detection compares size and
// mtime only, not these fields.
func statIdentity(info fs.FileInfo) (inode *int64, device *int64, err error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, nil, fmt.Errorf("cannot extract stat data: expected *syscall.Stat_t, got %T", info.Sys())
	}
	ino := int64(stat.Ino)
	dev := int64(stat.Dev)
	return &ino, &dev, nil
}
