package model

import "time"

// ResultRow is one persisted judgment: one rater's four dimension scores for
// one answer of one question. The triple (q_id, answer_title, user_name) is
// the natural key; re-saving it must update, never duplicate.
type ResultRow struct {
	QID         int       `json:"qId" bson:"q_id"`
	QName       string    `json:"qName" bson:"q_name"`
	AnswerTitle string    `json:"answerTitle" bson:"answer_title"`
	UserName    string    `json:"userName" bson:"user_name"`
	AgentLabel  string    `json:"agentLabel" bson:"agent_type"`
	AgentScene  string    `json:"agentScene" bson:"agent_scene"`
	TopicID     int       `json:"topicId" bson:"topic_id"`
	ItemVisual  int       `json:"itemVisual" bson:"item_visual"`
	ItemMajor   int       `json:"itemMajor" bson:"item_major"`
	ItemData    int       `json:"itemData" bson:"item_data"`
	ItemGuide   int       `json:"itemGuide" bson:"item_guide"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasNaturalKey reports whether the row carries a complete natural key
func (r *ResultRow) HasNaturalKey() bool {
	return r.QID > 0 && r.AnswerTitle != "" && r.UserName != ""
}

// DimensionScores maps the four persisted columns back onto the canonical
// dimension keys. Missing columns come back as 0 (unrated).
func (r *ResultRow) DimensionScores() map[Dimension]int {
	return map[Dimension]int{
		DimensionVisual:       r.ItemVisual,
		DimensionProfessional: r.ItemMajor,
		DimensionData:         r.ItemData,
		DimensionGuidance:     r.ItemGuide,
	}
}

// SetDimensionScore writes value into the column backing dim
func (r *ResultRow) SetDimensionScore(dim Dimension, value int) {
	switch dim {
	case DimensionVisual:
		r.ItemVisual = value
	case DimensionProfessional:
		r.ItemMajor = value
	case DimensionData:
		r.ItemData = value
	case DimensionGuidance:
		r.ItemGuide = value
	}
}
