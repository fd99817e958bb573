package metadata

import "github.com/vmunix/sortarr/internal/tmdb"

// Record is the resolved metadata for one title. Immutable once built; the
// JSON form is what the persistent cache stores.
type Record struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	MediaType     string   `json:"media_type"`
	Year          int      `json:"year,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
}

// IsTV reports whether the record is a series.
func (r *Record) IsTV() bool {
	return r.MediaType == tmdb.MediaTV
}

func recordFromDetails(d *tmdb.Details) *Record {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	return &Record{
		ID:            d.ID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		MediaType:     d.MediaType,
		Year:          d.Year(),
		Genres:        genres,
		PosterPath:    d.PosterPath,
		Overview:      d.Overview,
		Rating:        d.Rating,
	}
}
