package ranking

import (
	"encoding/json"
	"fmt"

	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
)

const snippetMaxRunes = 400

const rubricTemplate = `You are an expert job matching assistant. Rank the provided job listings by their relevance to the candidate's resume and detailed preferences. Analyze the job title, company, location and description snippet.
Candidate experience band: %s. Down-score jobs outside that band.
Assign a match_score from 1 (poor match) to 10 (excellent match) and provide a brief justification for your score (max 20 words).
details_link must always be a STRING. If you did not receive a link, output an empty string (""). Do NOT output null.
Do not discard any listing: every job you received must appear in the response.`

// projectedListing is the compact view of a listing sent for scoring. The
// description is truncated and the application link resolved up front so the
// model never sees provider metadata.
type projectedListing struct {
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	DetailsLink string `json:"details_link"`
	Snippet     string `json:"snippet"`
}

func projectListings(items []*serpapi.Listing) []projectedListing {
	projected := make([]projectedListing, 0, len(items))
	for _, item := range items {
		snippet := item.Description
		if runes := []rune(snippet); len(runes) > snippetMaxRunes {
			snippet = string(runes[:snippetMaxRunes]) + "..."
		}

		projected = append(projected, projectedListing{
			JobTitle:    item.Title,
			Company:     item.CompanyName,
			Location:    item.Location,
			DetailsLink: item.BestLink(),
			Snippet:     snippet,
		})
	}

	return projected
}

func buildPrompts(items []*serpapi.Listing, resumeText string, prefs *search.Preferences) (promptSet, error) {
	band := search.BandAny
	if prefs != nil {
		band = search.NormalizeBand(prefs.ExperienceBand)
	}

	prefsJSON, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return promptSet{}, fmt.Errorf("marshal preferences: %w", err)
	}

	jobsJSON, err := json.MarshalIndent(projectListings(items), "", "  ")
	if err != nil {
		return promptSet{}, fmt.Errorf("marshal listing batch: %w", err)
	}

	user := fmt.Sprintf(
		"Resume:\n%s\n\nDetailed Preferences:\n%s\n\nJob Listings to Rank:\n%s\n\nPlease rank these jobs based on the resume and preferences.",
		resumeText, prefsJSON, jobsJSON,
	)

	return promptSet{
		System: fmt.Sprintf(rubricTemplate, band),
		User:   user,
	}, nil
}
