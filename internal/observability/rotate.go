package observability

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const rotateSuffix = "2006-01-02_15"

// RotatingFile is an hourly rotating log sink. Rotated files carry an hour
// stamp suffix and only the newest backups are retained.
type RotatingFile struct {
	path    string
	backups int

	mu   sync.Mutex
	f    *os.File
	hour time.Time
	now  func() time.Time
}

func NewRotatingFile(path string, backups int) (*RotatingFile, error) {
	r := &RotatingFile{path: path, backups: backups, now: time.Now}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	r.f = f
	r.hour = r.now().Truncate(time.Hour)
	return nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hour := r.now().Truncate(time.Hour); hour.After(r.hour) {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	return r.f.Write(p)
}

func (r *RotatingFile) rotate() error {
	_ = r.f.Close()
	rotated := r.path + "." + r.hour.Format(rotateSuffix)
	if err := os.Rename(r.path, rotated); err != nil && !os.IsNotExist(err) {
		return err
	}
	r.prune()
	return r.open()
}

// prune deletes the oldest rotated files beyond the backup limit. The hour
// stamp suffix sorts lexicographically in time order.
func (r *RotatingFile) prune() {
	matches, err := filepath.Glob(r.path + ".*")
	if err != nil || len(matches) <= r.backups {
		return
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-r.backups] {
		_ = os.Remove(old)
	}
}

func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
