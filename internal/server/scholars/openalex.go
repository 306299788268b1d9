package scholars

import "github.com/iudanet/scholarkeeper/internal/models"

// Ответы OpenAlex: читаем только используемые поля
// https://docs.openalex.org/api-entities/authors/author-object

type institution struct {
	DisplayName string `json:"display_name"`
}

type author struct {
	SummaryStats          *models.SummaryStats `json:"summary_stats"`
	LastKnownInstitution  *institution         `json:"last_known_institution"`
	ID                    string               `json:"id"`
	DisplayName           string               `json:"display_name"`
	ORCID                 string               `json:"orcid"`
	LastKnownInstitutions []institution        `json:"last_known_institutions"`
	CountsByYear          []models.YearCount   `json:"counts_by_year"`
	WorksCount            int                  `json:"works_count"`
	CitedByCount          int                  `json:"cited_by_count"`
}

type work struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DisplayName     string `json:"display_name"`
	PublicationDate string `json:"publication_date"`
	DOI             string `json:"doi"`
	PublicationYear int    `json:"publication_year"`
	CitedByCount    int    `json:"cited_by_count"`
}

type authorsPage struct {
	Results []author `json:"results"`
}

type worksPage struct {
	Results []work `json:"results"`
}

func (a author) toScholar() models.Scholar {
	s := models.Scholar{
		ID:           models.CanonicalScholarID(a.ID),
		DisplayName:  a.DisplayName,
		ORCID:        a.ORCID,
		WorksCount:   a.WorksCount,
		CitedByCount: a.CitedByCount,
	}

	// Новая схема отдает список институтов, старая - один объект
	switch {
	case len(a.LastKnownInstitutions) > 0:
		s.Institution = a.LastKnownInstitutions[0].DisplayName
	case a.LastKnownInstitution != nil:
		s.Institution = a.LastKnownInstitution.DisplayName
	}

	return s
}

func (a author) toProfile(works []work) *models.Profile {
	p := &models.Profile{
		Scholar:      a.toScholar(),
		CountsByYear: a.CountsByYear,
		Works:        make([]models.Work, 0, len(works)),
	}
	if p.CountsByYear == nil {
		p.CountsByYear = []models.YearCount{}
	}
	if a.SummaryStats != nil {
		p.SummaryStats = *a.SummaryStats
	}

	for _, w := range works {
		title := w.Title
		if title == "" {
			title = w.DisplayName
		}
		p.Works = append(p.Works, models.Work{
			ID:              models.CanonicalScholarID(w.ID),
			Title:           title,
			PublicationDate: w.PublicationDate,
			DOI:             w.DOI,
			PublicationYear: w.PublicationYear,
			CitedByCount:    w.CitedByCount,
		})
	}

	return p
}
