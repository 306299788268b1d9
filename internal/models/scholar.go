package models

import "strings"

// ScholarURIPrefix is the prefix OpenAlex puts in front of entity ids.
const ScholarURIPrefix = "https://openalex.org/"

// CanonicalScholarID strips the source-specific URI prefix and surrounding
// whitespace from a scholar identifier.
// "https://openalex.org/A5023888391" -> "A5023888391"
func CanonicalScholarID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, ScholarURIPrefix)
	id = strings.TrimPrefix(id, "http://openalex.org/")
	return strings.Trim(id, "/")
}

// Scholar - краткая карточка автора в результатах поиска
type Scholar struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	ORCID        string `json:"orcid,omitempty"`
	Institution  string `json:"institution,omitempty"`
	WorksCount   int    `json:"works_count"`
	CitedByCount int    `json:"cited_by_count"`
}

// SummaryStats - агрегированные метрики цитируемости
type SummaryStats struct {
	TwoYearMeanCitedness float64 `json:"2yr_mean_citedness"`
	HIndex               int     `json:"h_index"`
	I10Index             int     `json:"i10_index"`
}

// YearCount - количество работ и цитирований за год
type YearCount struct {
	Year         int `json:"year"`
	WorksCount   int `json:"works_count"`
	CitedByCount int `json:"cited_by_count"`
}

// Work - публикация автора
type Work struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date,omitempty"`
	DOI             string `json:"doi,omitempty"`
	PublicationYear int    `json:"publication_year"`
	CitedByCount    int    `json:"cited_by_count"`
}

// Profile - агрегированный профиль ученого вместе с последними работами
type Profile struct {
	Scholar
	CountsByYear []YearCount  `json:"counts_by_year"`
	Works        []Work       `json:"works"`
	SummaryStats SummaryStats `json:"summary_stats"`
}
