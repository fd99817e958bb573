// Package tmdb provides a client for a TMDB-style metadata API.
package tmdb

import "strconv"

// Media types reported by the search and detail endpoints.
const (
	MediaTV    = "tv"
	MediaMovie = "movie"
)

// Candidate is one search result. Search data is provisional; the detail
// endpoints are authoritative for media-type classification.
type Candidate struct {
	ID         int
	Title      string
	MediaType  string
	Date       string // release or first-air date, "2024-03-01"
	GenreIDs   []int
	Popularity float64
	Overview   string
	PosterPath string
}

// Year extracts the year from the candidate's date string.
func (c *Candidate) Year() int {
	return yearOf(c.Date)
}

// Genre represents a genre entry from the detail endpoints.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Details is the authoritative record for a single title.
type Details struct {
	ID            int
	Title         string
	OriginalTitle string
	MediaType     string
	Date          string
	Genres        []Genre
	Overview      string
	PosterPath    string
	Rating        float64
}

// Year extracts the year from the detail record's date string.
func (d *Details) Year() int {
	return yearOf(d.Date)
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original.
func (d *Details) PosterURL(imageBase, size string) string {
	if d.PosterPath == "" {
		return ""
	}
	return imageBase + "/" + size + d.PosterPath
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// searchResponse is the common shape of the search endpoints.
type searchResponse struct {
	Page    int `json:"page"`
	Results []struct {
		ID           int     `json:"id"`
		MediaType    string  `json:"media_type"`
		Name         string  `json:"name"`  // tv
		Title        string  `json:"title"` // movie
		FirstAirDate string  `json:"first_air_date"`
		ReleaseDate  string  `json:"release_date"`
		GenreIDs     []int   `json:"genre_ids"`
		Popularity   float64 `json:"popularity"`
		Overview     string  `json:"overview"`
		PosterPath   string  `json:"poster_path"`
	} `json:"results"`
	TotalPages int `json:"total_pages"`
}

// tvDetailsResponse is the TV detail endpoint response.
type tvDetailsResponse struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	FirstAirDate string  `json:"first_air_date"`
	Genres       []Genre `json:"genres"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// movieDetailsResponse is the movie detail endpoint response.
type movieDetailsResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Genres        []Genre `json:"genres"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
}
