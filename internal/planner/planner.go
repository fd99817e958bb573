// Package planner computes target paths for organized media files from
// resolved metadata, falling back to parse-only information.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vmunix/sortarr/internal/metadata"
	"github.com/vmunix/sortarr/pkg/parse"
)

// DefaultFolderTemplate names the per-title folder under the target root.
const DefaultFolderTemplate = "{title} ({year})"

// Config tunes path generation.
type Config struct {
	// FolderTemplate supports {title}, {year}, {season} and {season:02}
	// placeholders. Empty uses DefaultFolderTemplate.
	FolderTemplate string
	// KeepOriginalName keeps the source filename instead of generating one.
	KeepOriginalName bool
	// Overwrite disables conflict suffixing; an existing target is the
	// executor's problem.
	Overwrite bool
}

// Planner turns (source file, metadata, parse info) into a target path.
// Pure apart from the existence probes used for conflict resolution.
type Planner struct {
	cfg    Config
	exists func(string) bool
}

// Option configures a Planner.
type Option func(*Planner)

// WithExists replaces the filesystem existence probe, for tests and
// dry runs.
func WithExists(fn func(string) bool) Option {
	return func(p *Planner) {
		p.exists = fn
	}
}

// New creates a Planner. An empty folder template uses the default.
func New(cfg Config, opts ...Option) *Planner {
	if cfg.FolderTemplate == "" {
		cfg.FolderTemplate = DefaultFolderTemplate
	}
	p := &Planner{
		cfg: cfg,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes the target path for src under root. rec and info may each
// be nil; with neither, the file lands in an "Unknown - <stem>" folder.
// Given identical inputs and filesystem state the result is deterministic.
func (p *Planner) Plan(src, root string, rec *metadata.Record, info *parse.Info) (string, error) {
	if root == "" {
		return "", fmt.Errorf("plan %s: empty target root", src)
	}

	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	title, year, season, episode, isTV := deriveFields(rec, info)

	var dir, name string
	if title == "" {
		dir = filepath.Join(root, "Unknown - "+SanitizeFilename(stem))
		name = base
	} else {
		folder := applyTemplate(p.cfg.FolderTemplate, map[string]any{
			"title":  SanitizeFilename(title),
			"year":   yearString(year),
			"season": season,
		})
		folder = SanitizeFilename(trimDanglingParens(folder))
		dir = filepath.Join(root, folder)
		if isTV {
			dir = filepath.Join(dir, fmt.Sprintf("Season %02d", season))
		}
		name = p.fileName(base, stem, ext, title, year, season, episode, isTV)
	}

	target := filepath.Join(dir, name)
	if p.cfg.Overwrite {
		return target, nil
	}
	return p.resolveConflict(target), nil
}

// fileName picks the target filename per the keep-original policy.
func (p *Planner) fileName(base, stem, ext, title string, year, season, episode int, isTV bool) string {
	if p.cfg.KeepOriginalName {
		return base
	}
	if isTV {
		if episode <= 0 {
			// No episode number to generate from.
			return base
		}
		return SanitizeFilename(fmt.Sprintf("S%02dE%02d - %s", season, episode, title)) + ext
	}
	name := title
	if year > 0 {
		name = fmt.Sprintf("%s (%d)", title, year)
	}
	return SanitizeFilename(name) + ext
}

// resolveConflict appends an incrementing " (n)" stem suffix until the
// path is free.
func (p *Planner) resolveConflict(target string) string {
	if !p.exists(target) {
		return target
	}
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !p.exists(candidate) {
			return candidate
		}
	}
}

// deriveFields merges metadata and parse info. Metadata wins for title and
// year; season/episode only ever come from the parse. Season 0 is the
// specials season and is kept as-is: the parser already defaults an absent
// season to 1, so a zero here always means a special.
func deriveFields(rec *metadata.Record, info *parse.Info) (title string, year, season, episode int, isTV bool) {
	if info != nil {
		title = info.Title
		year = info.Year
		season = info.Season
		episode = info.Episode
		isTV = !info.IsMovie
	}
	if rec != nil {
		title = rec.Title
		if rec.Year > 0 {
			year = rec.Year
		}
		isTV = rec.IsTV()
	}
	return title, year, season, episode, isTV
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

var emptyParens = regexp.MustCompile(`\(\s*\)`)

// trimDanglingParens removes the empty parenthesis pair left behind when
// the template's year placeholder expands to nothing.
func trimDanglingParens(s string) string {
	return strings.TrimSpace(emptyParens.ReplaceAllString(s, ""))
}

var formatPattern = regexp.MustCompile(`\{(\w+)(?::(\d+))?\}`)

// applyTemplate substitutes {name} and zero-padded {name:02} placeholders.
// Unknown placeholders are left as-is.
func applyTemplate(template string, vars map[string]any) string {
	return formatPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := formatPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		val, ok := vars[parts[1]]
		if !ok {
			return match
		}

		if len(parts) >= 3 && parts[2] != "" {
			if width, err := strconv.Atoi(parts[2]); err == nil {
				if n, ok := val.(int); ok {
					return fmt.Sprintf("%0*d", width, n)
				}
			}
		}
		return fmt.Sprintf("%v", val)
	})
}
