package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"folio-api/internal/logging/types"
)

// FileAdapter writes log entries to a file, rotating by size and/or age
type FileAdapter struct {
	name        string
	config      FileConfig
	mu          sync.Mutex
	file        *os.File
	size        int64
	lastRotated time.Time
}

// FileConfig configures the file adapter
type FileConfig struct {
	FilePath    string        `yaml:"file_path"`
	Format      string        `yaml:"format"`       // json or text
	MaxSize     int64         `yaml:"max_size"`     // bytes, 0 disables size rotation
	MaxAge      time.Duration `yaml:"max_age"`      // 0 disables age rotation
	MaxBackups  int           `yaml:"max_backups"`  // rotated files to keep
	CreateDirs  bool          `yaml:"create_dirs"`  // create parent directories
	FileMode    os.FileMode   `yaml:"file_mode"`
	SyncOnWrite bool          `yaml:"sync_on_write"`
}

// NewFileAdapter creates a file adapter and opens the log file
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FileMode == 0 {
		config.FileMode = 0644
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 10
	}

	if config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	adapter := &FileAdapter{
		name:        name,
		config:      config,
		lastRotated: time.Now(),
	}
	if err := adapter.open(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return adapter, nil
}

func (a *FileAdapter) Write(entry *types.LogEntry) error {
	line, err := formatEntry(entry, a.config.Format, false)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.shouldRotate() {
		if err := a.rotate(); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	n, err := a.file.WriteString(line + "\n")
	if err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}
	a.size += int64(n)

	if a.config.SyncOnWrite {
		return a.file.Sync()
	}
	return nil
}

func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

func (a *FileAdapter) Name() string {
	return a.name
}

func (a *FileAdapter) open() error {
	file, err := os.OpenFile(a.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, a.config.FileMode)
	if err != nil {
		return err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	a.file = file
	a.size = stat.Size()
	return nil
}

func (a *FileAdapter) shouldRotate() bool {
	if a.config.MaxSize > 0 && a.size >= a.config.MaxSize {
		return true
	}
	if a.config.MaxAge > 0 && time.Since(a.lastRotated) >= a.config.MaxAge {
		return true
	}
	return false
}

func (a *FileAdapter) rotate() error {
	if a.file != nil {
		if err := a.file.Close(); err != nil {
			return err
		}
		a.file = nil
	}

	backupPath := fmt.Sprintf("%s.%s", a.config.FilePath, time.Now().Format("20060102-150405"))
	if err := os.Rename(a.config.FilePath, backupPath); err != nil {
		return err
	}

	// Rotation must succeed even if old backups cannot be pruned
	if err := a.pruneBackups(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prune old log backups: %v\n", err)
	}

	if err := a.open(); err != nil {
		return err
	}
	a.lastRotated = time.Now()
	return nil
}

func (a *FileAdapter) pruneBackups() error {
	dir := filepath.Dir(a.config.FilePath)
	baseName := filepath.Base(a.config.FilePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, baseName+".") && name != baseName {
			backups = append(backups, filepath.Join(dir, name))
		}
	}

	if len(backups) <= a.config.MaxBackups {
		return nil
	}

	// Backup names embed the rotation timestamp, so oldest sorts first
	sort.Strings(backups)
	for _, backup := range backups[:len(backups)-a.config.MaxBackups] {
		if err := os.Remove(backup); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove old backup %s: %v\n", backup, err)
		}
	}
	return nil
}
