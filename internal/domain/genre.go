package domain

import (
	"sort"
	"strings"
)

// TMDB genre ids for the genres the form offers.
var genreCodes = map[string]int{
	"drama":       18,
	"comedy":      35,
	"thriller":    53,
	"sci-fi":      878,
	"horror":      27,
	"romance":     10749,
	"documentary": 99,
	"action":      28,
	"animation":   16,
}

type Genre struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// GenreCode looks the genre up case-insensitively. Unknown genres report false.
func GenreCode(genre string) (int, bool) {
	code, ok := genreCodes[strings.ToLower(strings.TrimSpace(genre))]
	return code, ok
}

// Genres lists the supported genres sorted by name.
func Genres() []Genre {
	out := make([]Genre, 0, len(genreCodes))
	for name, id := range genreCodes {
		out = append(out, Genre{Name: name, ID: id})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
