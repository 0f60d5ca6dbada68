package logging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// rotateFiles shifts name.N.ext to name.N+1.ext, drops backups beyond
// maxBackups and moves the live file to name.1.ext.
func rotateFiles(fs afero.Fs, basePath string, maxBackups int) error {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	backups, err := findBackups(fs, dir, name, ext)
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(backups)))

	for _, num := range backups {
		oldPath := filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, num, ext))
		if num >= maxBackups {
			fs.Remove(oldPath)
			continue
		}
		newPath := filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, num+1, ext))
		if err := fs.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("failed to rotate %s to %s: %w", oldPath, newPath, err)
		}
	}

	if exists, _ := afero.Exists(fs, basePath); exists {
		rotated := filepath.Join(dir, fmt.Sprintf("%s.1%s", name, ext))
		if err := fs.Rename(basePath, rotated); err != nil {
			return fmt.Errorf("failed to rotate current log: %w", err)
		}
	}
	return nil
}

func findBackups(fs afero.Fs, dir, name, ext string) ([]int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var backups []int
	prefix := name + "."
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext))
		if err != nil {
			continue
		}
		backups = append(backups, num)
	}
	return backups, nil
}
