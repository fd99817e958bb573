package fileops

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".ts":   true,
	".webm": true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
}

// IsVideoFile reports whether path has a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// FindVideos walks root and returns all video files, skipping samples.
func FindVideos(root string) ([]string, error) {
	var videos []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsVideoFile(path) {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), "sample") {
			return nil
		}
		videos = append(videos, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	return videos, nil
}
