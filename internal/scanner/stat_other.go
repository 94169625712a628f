//go:build !unix

package scanner

import "io/fs"

// statIdentity has no inode/device source on non-Unix platforms; the
// visited-set based loop breaker falls back to canonical-path comparison.
func statIdentity(info fs.FileInfo) (inode *int64, device *int64, err error) {
	return nil, nil, nil
}
