package utils

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// WriteFileAtomic writes data to a temporary file next to path and renames it into place, so
// readers never observe a partially written file. On any failure the temporary file is removed
// and the previous contents of path are left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "cannot create temporary file for %q", path)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			utils.UncheckedError(tmp.Close())
			RemoveFileNoError(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "cannot write %q", tmpName)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "cannot sync %q", tmpName)
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrapf(err, "cannot chmod %q", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "cannot close %q", tmpName)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "cannot move %q into place", path)
	}
	return nil
}

// RemoveFileNoError will remove the file at the given path if it exists. Any
// errors will be suppressed.
func RemoveFileNoError(path string) {
	utils.UncheckedErrorFunc(func() error {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	})
}
