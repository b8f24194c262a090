package encoding

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// outputLock guards an output path across processes for the lifetime of a job.
type outputLock struct {
	lock *flock.Flock
}

func lockOutput(outputPath string) (*outputLock, error) {
	lock := flock.New(outputPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output %s: %w", outputPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputBusy, outputPath)
	}
	return &outputLock{lock: lock}, nil
}

func (l *outputLock) release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(l.lock.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
