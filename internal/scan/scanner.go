package scan

import (
	"os"
	"path/filepath"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ScanRoot lists every *.txt export under root. A missing root yields no
// files and no error.
func ScanRoot(root string) ([]FileInfo, error) {
	if root == "" {
		return nil, nil
	}

	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsExport(path) {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return files, nil
}

// IsExport reports whether path looks like a chat export file.
func IsExport(path string) bool {
	base := filepath.Base(path)
	return strings.EqualFold(filepath.Ext(base), ".txt") && !strings.HasPrefix(base, ".")
}
