package file

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// AcquireLock takes a best-effort advisory lock by creating the lock
// file exclusively. A held lock fails immediately; the caller decides
// whether to retry. This guards the read-modify-write cycle of a
// channel file against a concurrent writer in the common case, but is
// not a cross-host mutual exclusion mechanism.
func AcquireLock(fs afero.Fs, lockPath string) (release func() error, err error) {
	f, err := fs.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("channel is locked by another writer (%s): %w", lockPath, err)
	}
	_, _ = f.Write([]byte("locked"))
	_ = f.Close()
	return func() error { return fs.Remove(lockPath) }, nil
}
