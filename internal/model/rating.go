package model

import "time"

// AnswerRating holds the dimension scores for one candidate answer
type AnswerRating struct {
	AnswerID   string  `json:"answerId" bson:"answerId"`
	Scores     []Score `json:"scores" bson:"scores"`
	TotalScore int     `json:"totalScore" bson:"totalScore"` // derived, always sum of Scores
}

// ScoreFor returns the value recorded for dim, 0 if unrated
func (ar *AnswerRating) ScoreFor(dim Dimension) int {
	for _, s := range ar.Scores {
		if s.Dimension == dim {
			return s.Value
		}
	}
	return 0
}

// SetScore upserts the score for dim and recomputes the total.
// Dimensions are not additive: a repeated dimension replaces the prior value.
func (ar *AnswerRating) SetScore(dim Dimension, value int) {
	for i := range ar.Scores {
		if ar.Scores[i].Dimension == dim {
			ar.Scores[i].Value = value
			ar.recomputeTotal()
			return
		}
	}
	ar.Scores = append(ar.Scores, Score{Dimension: dim, Value: value})
	ar.recomputeTotal()
}

func (ar *AnswerRating) recomputeTotal() {
	total := 0
	for _, s := range ar.Scores {
		total += s.Value
	}
	ar.TotalScore = total
}

// IsComplete reports whether every canonical dimension is scored above zero
func (ar *AnswerRating) IsComplete() bool {
	if len(ar.Scores) != DimensionCount {
		return false
	}
	for _, s := range ar.Scores {
		if s.Value <= 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can't mutate store state through reads
func (ar *AnswerRating) Clone() *AnswerRating {
	cp := &AnswerRating{
		AnswerID:   ar.AnswerID,
		TotalScore: ar.TotalScore,
		Scores:     make([]Score, len(ar.Scores)),
	}
	copy(cp.Scores, ar.Scores)
	return cp
}

// QuestionRating is the collection of answer ratings for one question.
// It exists only once any answer of the question has been scored.
type QuestionRating struct {
	QuestionID    int             `json:"questionId" bson:"questionId"`
	AnswerRatings []*AnswerRating `json:"answerRatings" bson:"answerRatings"`
}

// AnswerRating returns the rating for answerID, nil if unknown
func (qr *QuestionRating) AnswerRating(answerID string) *AnswerRating {
	for _, ar := range qr.AnswerRatings {
		if ar.AnswerID == answerID {
			return ar
		}
	}
	return nil
}

// IsComplete reports whether every answer of the question is fully scored
func (qr *QuestionRating) IsComplete() bool {
	if len(qr.AnswerRatings) == 0 {
		return false
	}
	for _, ar := range qr.AnswerRatings {
		if !ar.IsComplete() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the question rating
func (qr *QuestionRating) Clone() *QuestionRating {
	cp := &QuestionRating{
		QuestionID:    qr.QuestionID,
		AnswerRatings: make([]*AnswerRating, len(qr.AnswerRatings)),
	}
	for i, ar := range qr.AnswerRatings {
		cp.AnswerRatings[i] = ar.Clone()
	}
	return cp
}

// RatingSnapshot is the full rating state mirrored to the durable backup slot
type RatingSnapshot struct {
	UserID          string            `json:"userId"`
	TopicID         int               `json:"topicId"`
	QuestionRatings []*QuestionRating `json:"questionRatings"`
	SavedAt         time.Time         `json:"savedAt"`
}

// Progress is the completed/total question count for the active set
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}
