package index

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type fileInfo struct {
	Path    string
	Name    string
	ModTime time.Time
}

// discoverSupportedFiles walks the documents directory and returns every file
// whose extension has a registered extractor. Hidden files and directories are
// skipped.
func discoverSupportedFiles(rootPath string) ([]fileInfo, error) {
	var files []fileInfo

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && strings.HasPrefix(info.Name(), ".") && path != rootPath {
			return filepath.SkipDir
		}

		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		files = append(files, fileInfo{
			Path:    path,
			Name:    info.Name(),
			ModTime: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
