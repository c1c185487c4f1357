package storage

import (
	"errors"
	"io/fs"
	"os"
)

// sidecarSuffixes are the files SQLite keeps next to a database in WAL mode.
var sidecarSuffixes = []string{"", "-wal", "-shm", "-journal"}

// SnapshotBytes returns the on-disk size of the snapshot database at dbPath,
// including its WAL, shared-memory and rollback journal files. A snapshot that
// has not been created yet has size 0.
func SnapshotBytes(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	var total int64
	for _, suffix := range sidecarSuffixes {
		info, err := os.Stat(dbPath + suffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if info.IsDir() {
			return 0, &fs.PathError{Op: "size", Path: dbPath + suffix, Err: errors.New("is a directory")}
		}
		total += info.Size()
	}
	return total, nil
}
