package auditlog

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	lockRetries    = 10
	lockRetryDelay = 50 * time.Millisecond
	lockStaleAfter = 5 * time.Second
)

// acquireLock creates the lock file with exclusive-create semantics,
// retrying with short sleeps. A lock file older than lockStaleAfter is
// treated as abandoned by a crashed process and removed. Returns false when
// the lock could not be acquired; the caller proceeds unlocked.
func acquireLock(path string) bool {
	for attempt := 0; attempt < lockRetries; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return true
		}
		if !os.IsExist(err) {
			log.Warn().Err(err).Msg("audit lock create failed")
			return false
		}

		if info, statErr := os.Stat(path); statErr == nil {
			if time.Since(info.ModTime()) > lockStaleAfter {
				_ = os.Remove(path)
				continue
			}
		}

		time.Sleep(lockRetryDelay)
	}
	return false
}

// releaseLock removes the lock file.
func releaseLock(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("audit lock release failed")
	}
}
