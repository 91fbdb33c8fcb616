package reconciler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

// BackupTask copies the sqlite file into a backup directory and prunes old
// copies down to a retention count.
type BackupTask struct {
	dbPath string
	dir    string
	keep   int
	logger *zap.Logger
}

func NewBackupTask(dbPath, dir string, keep int, logger *zap.Logger) *BackupTask {
	return &BackupTask{dbPath: dbPath, dir: dir, keep: keep, logger: logger}
}

func (b *BackupTask) Run() {
	if err := b.backup(); err != nil {
		b.logger.Error("database backup failed", zap.Error(err))
		return
	}
	if err := b.prune(); err != nil {
		b.logger.Warn("backup pruning failed", zap.Error(err))
	}
}

func (b *BackupTask) backup() error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}

	src, err := os.Open(b.dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	name := fmt.Sprintf("warden-%s.db", time.Now().Format("20060102-150405"))
	dst, err := os.Create(filepath.Join(b.dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	b.logger.Info("database backed up", zap.String("file", name))
	return nil
}

func (b *BackupTask) prune() error {
	matches, err := filepath.Glob(filepath.Join(b.dir, "warden-*.db"))
	if err != nil {
		return err
	}
	if len(matches) <= b.keep {
		return nil
	}

	sort.Strings(matches)
	for _, stale := range matches[:len(matches)-b.keep] {
		if err := os.Remove(stale); err != nil {
			return err
		}
	}
	return nil
}
