package services

import (
	"math"
	"sort"

	"schliessplan_app_go/models"
)

// MatchScore is the outcome of scoring one catalog item against a criteria set
type MatchScore struct {
	Matched int `json:"matched"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// MatchCheck records one criterion comparison for diagnostics
type MatchCheck struct {
	Category   string             `json:"category"`
	Selected   []string           `json:"selected"`
	Candidates []models.OptionRef `json:"candidates"`
	Matched    []bool             `json:"matched"`
}

// RankedItem pairs a catalog item with its match result and rank
type RankedItem struct {
	Item   *models.CatalogItem `json:"item"`
	Score  MatchScore          `json:"score"`
	Rank   int                 `json:"rank"`
	Checks []MatchCheck        `json:"checks,omitempty"`
	// Explicit marks the short-circuit case: the user picked this item directly,
	// no scoring was performed
	Explicit bool `json:"explicit,omitempty"`
}

// ScoreItem computes the match score of one catalog item against the criteria.
// Inactive items score {0,0,0} and are excluded from ranking by the caller.
// Side-effect-free; the returned checks trace every comparison made.
func ScoreItem(criteria *models.CriteriaSet, item *models.CatalogItem) (MatchScore, []MatchCheck) {
	if !item.IsActive {
		return MatchScore{}, nil
	}

	elig := item.Eligibility()
	var score MatchScore
	var checks []MatchCheck

	singles := []struct {
		category string
		value    string
		refs     []models.OptionRef
	}{
		{models.CategoryObjectType, criteria.ObjectType, elig.ObjectTypes},
		{models.CategoryInstallationType, criteria.InstallationType, elig.InstallationTypes},
		{models.CategoryQuality, criteria.QualityTier, elig.QualityTiers},
		{models.CategoryTechnology, criteria.Technology, elig.Technologies},
	}
	for _, s := range singles {
		if s.value == "" {
			continue
		}
		matched := refsContain(s.refs, s.value)
		score.Total++
		if matched {
			score.Matched++
		}
		checks = append(checks, MatchCheck{
			Category:   s.category,
			Selected:   []string{s.value},
			Candidates: s.refs,
			Matched:    []bool{matched},
		})
	}

	score, checks = scoreMultiValued(score, checks, models.CategoryDoors, criteria.DoorTypes, elig.DoorTypes)
	score, checks = scoreMultiValued(score, checks, models.CategoryFeatures, criteria.Features, elig.Features)

	if score.Total > 0 {
		score.Percent = int(math.Round(float64(score.Matched) / float64(score.Total) * 100))
	}
	return score, checks
}

// scoreMultiValued applies the multi-valued rule: an empty eligibility list
// imposes no restriction, so every selected value counts as matched. A
// non-empty list matches each selected value independently.
func scoreMultiValued(score MatchScore, checks []MatchCheck, category string, selected []string, refs []models.OptionRef) (MatchScore, []MatchCheck) {
	if len(selected) == 0 {
		return score, checks
	}

	matched := make([]bool, len(selected))
	for i, value := range selected {
		if len(refs) == 0 {
			matched[i] = true
		} else {
			matched[i] = refsContain(refs, value)
		}
	}

	score.Total += len(selected)
	for _, m := range matched {
		if m {
			score.Matched++
		}
	}
	checks = append(checks, MatchCheck{
		Category:   category,
		Selected:   selected,
		Candidates: refs,
		Matched:    matched,
	})
	return score, checks
}

func refsContain(refs []models.OptionRef, value string) bool {
	for _, r := range refs {
		if r.Matches(value) {
			return true
		}
	}
	return false
}

// RankCatalog scores every active catalog item against the criteria and
// returns them sorted by match percentage descending, ties broken by
// sortOrder ascending, then name ascending. If the criteria carry an explicit
// item selection that names an existing item, only that item is returned and
// no scoring is performed. Does not mutate catalog or criteria.
func RankCatalog(criteria *models.CriteriaSet, catalog []models.CatalogItem) []RankedItem {
	if criteria.ExplicitItem != "" {
		for i := range catalog {
			if catalog[i].MatchesSelection(criteria.ExplicitItem) {
				return []RankedItem{{Item: &catalog[i], Rank: 1, Explicit: true}}
			}
		}
		// Unknown selection falls through to normal scoring
	}

	ranked := make([]RankedItem, 0, len(catalog))
	for i := range catalog {
		item := &catalog[i]
		if !item.IsActive {
			continue
		}
		score, checks := ScoreItem(criteria, item)
		ranked = append(ranked, RankedItem{Item: item, Score: score, Checks: checks})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Percent != ranked[j].Score.Percent {
			return ranked[i].Score.Percent > ranked[j].Score.Percent
		}
		if ranked[i].Item.SortOrder != ranked[j].Item.SortOrder {
			return ranked[i].Item.SortOrder < ranked[j].Item.SortOrder
		}
		return ranked[i].Item.Name < ranked[j].Item.Name
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
