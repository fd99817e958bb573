package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmunix/sortarr/internal/metadata"
)

const (
	sidecarTimeout = 30 * time.Second
	posterSize     = "w500"
)

// SidecarWriter persists auxiliary artifacts next to an organized media
// file: a poster image fetched from the provider's image host and a plain
// text synopsis.
type SidecarWriter struct {
	imageBase  string
	httpClient *http.Client
}

// NewSidecarWriter creates a writer fetching posters from imageBase.
// A nil client uses a default with a sane timeout.
func NewSidecarWriter(imageBase string, client *http.Client) *SidecarWriter {
	if client == nil {
		client = &http.Client{Timeout: sidecarTimeout}
	}
	return &SidecarWriter{imageBase: imageBase, httpClient: client}
}

// Write stores poster.jpg and synopsis.txt in the directory holding
// mediaPath. Existing sidecars are left alone.
func (w *SidecarWriter) Write(ctx context.Context, mediaPath string, rec *metadata.Record) error {
	dir := filepath.Dir(mediaPath)

	if err := w.writeSynopsis(dir, rec); err != nil {
		return err
	}
	return w.writePoster(ctx, dir, rec)
}

func (w *SidecarWriter) writeSynopsis(dir string, rec *metadata.Record) error {
	if rec.Overview == "" {
		return nil
	}
	path := filepath.Join(dir, "synopsis.txt")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(rec.Title)
	if rec.Year > 0 {
		fmt.Fprintf(&b, " (%d)", rec.Year)
	}
	b.WriteString("\n")
	if len(rec.Genres) > 0 {
		b.WriteString(strings.Join(rec.Genres, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(rec.Overview)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write synopsis: %w", err)
	}
	return nil
}

func (w *SidecarWriter) writePoster(ctx context.Context, dir string, rec *metadata.Record) error {
	if rec.PosterPath == "" || w.imageBase == "" {
		return nil
	}
	path := filepath.Join(dir, "poster.jpg")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	url := w.imageBase + "/" + posterSize + rec.PosterPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build poster request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch poster: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch poster: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create poster file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write poster: %w", err)
	}
	return f.Close()
}
