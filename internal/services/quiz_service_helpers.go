package services

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/validator"
	"gorm.io/datatypes"
)

// applyRetakePolicy patches the stored policy with the optional request
// fields, leaving absent fields at their current values.
func applyRetakePolicy(policy *models.RetakePolicy, req *validator.RetakePolicyRequest) {
	if req == nil {
		return
	}
	if req.MaxAttempts != nil {
		policy.MaxAttempts = *req.MaxAttempts
	}
	if req.CooldownHours != nil {
		policy.CooldownHours = *req.CooldownHours
	}
}

// computeQuizAnalytics derives the analytics snapshot from the full result
// set. Averages are rounded to whole numbers, the completion rate counts
// results with a score above zero, and the score distribution splits the
// total points into five 20% buckets.
func computeQuizAnalytics(totalPoints int, results []*models.QuizResult, now time.Time) models.QuizAnalytics {
	analytics := models.QuizAnalytics{
		TotalAttempts:     len(results),
		ScoreDistribution: encodeBuckets(buildScoreBuckets(totalPoints, results)),
		LastCalculatedAt:  &now,
	}

	if len(results) == 0 {
		return analytics
	}

	var scoreSum, timeSum float64
	completed := 0
	for _, r := range results {
		scoreSum += r.Score
		timeSum += float64(r.TimeTaken)
		if r.Completed() {
			completed++
		}
	}

	n := float64(len(results))
	analytics.AverageScore = math.Round(scoreSum / n)
	analytics.AverageTime = math.Round(timeSum / n)
	analytics.CompletionRate = math.Round(float64(completed) / n * 100)

	return analytics
}

// buildScoreBuckets assigns each score to the bucket where min < score <= max.
// Zero scores land in the first bucket.
func buildScoreBuckets(totalPoints int, results []*models.QuizResult) []models.ScoreBucket {
	buckets := make([]models.ScoreBucket, 5)
	step := float64(totalPoints) / 5
	for i := range buckets {
		buckets[i] = models.ScoreBucket{
			Label: fmt.Sprintf("%d-%d%%", i*20, (i+1)*20),
			Min:   step * float64(i),
			Max:   step * float64(i+1),
		}
	}

	if totalPoints <= 0 {
		return buckets
	}

	for _, r := range results {
		idx := 0
		for i, b := range buckets {
			if r.Score > b.Min && r.Score <= b.Max {
				idx = i
				break
			}
		}
		if r.Score > buckets[4].Max {
			idx = 4
		}
		buckets[idx].Count++
	}

	return buckets
}

func encodeBuckets(buckets []models.ScoreBucket) datatypes.JSON {
	raw, _ := json.Marshal(buckets)
	return raw
}

// buildRetakeEligibility answers whether the user may attempt the quiz now.
// Below the attempt cap the answer is always yes; at or past the cap the
// cooldown window after the last attempt decides.
func buildRetakeEligibility(quiz *models.Quiz, status *repositories.RetakeStatus, userID string, now time.Time) *RetakeEligibility {
	eligibility := &RetakeEligibility{
		QuizID:       quiz.ID,
		UserID:       userID,
		AttemptCount: status.AttemptCount,
		MaxAttempts:  quiz.RetakePolicy.MaxAttempts,
	}

	if !quiz.IsActive {
		eligibility.Reason = "quiz is inactive"
		return eligibility
	}

	if status.AttemptCount < quiz.RetakePolicy.MaxAttempts {
		eligibility.Eligible = true
		return eligibility
	}

	if status.LastAttemptAt != nil && quiz.RetakePolicy.CooldownHours > 0 {
		next := quiz.RetakePolicy.NextRetakeTime(*status.LastAttemptAt)
		if now.Before(next) {
			eligibility.Reason = "cooldown in effect"
			eligibility.NextRetakeTime = &next
			return eligibility
		}
	}

	eligibility.Eligible = true
	return eligibility
}
