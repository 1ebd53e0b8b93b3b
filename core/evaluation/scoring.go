package evaluation

import "strconv"

// OverallScore is the unweighted mean of the criterion scores.
func OverallScore(scores Scores) float64 {
	var sum int
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / NumCriteria
}

// DisplayScore rounds a score to one decimal. Only used for display: scores are stored with full precision.
func DisplayScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

func inRange(score int) bool {
	return score >= MinScore && score <= MaxScore
}
