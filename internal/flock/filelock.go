package flock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

var (
	ErrLockWait      = errors.New("gave up waiting for file lock")
	ErrNoLockRelease = errors.New("unable to release file lock")
)

const (
	pollInterval        = 100 * time.Millisecond
	pidWriteGracePeriod = 1 * time.Second
)

func lockPath(path string) string {
	return path + ".pid"
}

// Acquire takes an exclusive lock on path by creating a sibling PID file. If another live process
// holds the lock this blocks until the lock is released or ctx is done. Locks held by processes
// that no longer exist are broken.
func Acquire(ctx context.Context, log *zap.Logger, path string) error {
	log = log.With(zap.String("lock-path", lockPath(path)))
	for {
		acquired, err := tryAcquire(log, path)
		if err != nil || acquired {
			return err
		}
		if err = waitOnPID(ctx, log, path); err != nil {
			return err
		}
	}
}

func Release(log *zap.Logger, path string) error {
	log.Debug("Deleting lock file.", zap.String("lock-path", lockPath(path)))
	if err := os.Remove(lockPath(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("Could not delete lock file.", zap.Error(err))
		return fmt.Errorf("%w(%s): %w", ErrNoLockRelease, lockPath(path), err)
	}
	return nil
}

func tryAcquire(log *zap.Logger, path string) (bool, error) {
	sem, err := os.OpenFile(lockPath(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		log.Debug("Lock file already exists. Waiting for it to be released.")
		return false, nil
	} else if err != nil {
		log.Error("Failed to create lock file.", zap.Error(err))
		return false, err
	}

	log.Debug("Acquired lock. Writing PID to file.")
	if _, err = fmt.Fprint(sem, os.Getpid()); err != nil {
		_ = sem.Close()
		return false, err
	} else if err = sem.Close(); err != nil {
		return false, err
	}
	return true, nil
}

func waitOnPID(ctx context.Context, log *zap.Logger, path string) error {
	for iterations := 1; ; iterations++ {
		if iterations%100 == 0 {
			log.Info("Waiting for another run to release its lock on the versions file.")
		}

		c, err := os.ReadFile(lockPath(path))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Debug("Lock has been released. PID file was deleted.")
				return nil
			}
			return err
		}

		var pid int
		if _, err = fmt.Sscan(string(c), &pid); err != nil {
			log.Debug("Error reading PID.", zap.Error(err))
			// The owner may not have written its PID yet. Past the grace period it is presumed dead.
			fi, statErr := os.Stat(lockPath(path))
			if statErr != nil {
				if errors.Is(statErr, os.ErrNotExist) {
					return nil
				}
				return statErr
			}
			if time.Since(fi.ModTime()) >= pidWriteGracePeriod {
				log.Debug("Forcing lock release after PID-write grace period expired.")
				return Release(log, path)
			}
		} else if !processIsRunning(pid) {
			log.Debug("Forcing lock release after owning PID exited.", zap.Int("pid", pid))
			return Release(log, path)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrLockWait, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
