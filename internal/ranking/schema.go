package ranking

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// responseSchema constrains the shape of the scoring payload. The score
// range is deliberately not part of it: a shape violation discards the whole
// payload, while an out-of-range score only drops that item.
const responseSchema = `{
  "type": "object",
  "required": ["job_listings"],
  "properties": {
    "job_listings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["job_title", "company", "match_score", "reason"],
        "properties": {
          "job_title": {"type": "string"},
          "company": {"type": "string"},
          "details_link": {"type": ["string", "null"]},
          "match_score": {"type": "integer"},
          "reason": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(responseSchema)

// parseRanked validates the raw payload and normalizes the surviving items.
// Any payload-level defect yields an empty list: ranking is best effort and
// the pipeline proceeds without it. A null or absent details_link becomes an
// empty string; an out-of-range match_score drops the item. Legacy keys such
// as the deprecated "link" are shed by the typed decode.
func parseRanked(raw string, log *zap.Logger) []Listing {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		log.Warn("scoring payload is not valid JSON", zap.Error(err))
		return []Listing{}
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		log.Warn("scoring payload failed schema validation", zap.String("issues", strings.Join(issues, "; ")))
		return []Listing{}
	}

	var payload rankedJobs
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Warn("decoding validated scoring payload", zap.Error(err))
		return []Listing{}
	}

	ranked := make([]Listing, 0, len(payload.JobListings))
	for _, item := range payload.JobListings {
		if item.MatchScore < 1 || item.MatchScore > 10 {
			log.Debug("dropping listing with out-of-range score",
				zap.String("job_title", item.JobTitle),
				zap.Int("match_score", item.MatchScore),
			)
			continue
		}
		ranked = append(ranked, item)
	}

	// Score descending; the provider echoes input order, so a stable sort
	// keeps fetch order as the tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	return ranked
}
