package feedback

import "math"

// Summarize aggregates entries. A missing rating counts as zero. The most
// common allergy feel is counted in the order given; ties go to the feel
// seen first, and entries without a feel count as unknown.
func Summarize(entries []Entry) Summary {
	s := Summary{
		Count:           len(entries),
		MostCommonLabel: AllergyFeel("").Label(),
	}
	if len(entries) == 0 {
		return s
	}

	var (
		ratingSum int
		order     []AllergyFeel
		counts    = make(map[AllergyFeel]int)
	)
	for _, e := range entries {
		if e.RecommendationRating != nil {
			ratingSum += *e.RecommendationRating
		}
		if _, seen := counts[e.AllergyFeel]; !seen {
			order = append(order, e.AllergyFeel)
		}
		counts[e.AllergyFeel]++
		if e.FeedbackDate > s.LatestFeedbackDate {
			s.LatestFeedbackDate = e.FeedbackDate
		}
	}

	s.AverageRating = math.Round(float64(ratingSum)/float64(len(entries))*100) / 100

	best, bestCount := AllergyFeel(""), 0
	for _, feel := range order {
		if counts[feel] > bestCount {
			best, bestCount = feel, counts[feel]
		}
	}
	s.MostCommonFeel = best
	s.MostCommonLabel = best.Label()

	return s
}
