package model

import "time"

// Answer is one AI agent's candidate answer to a question.
// The title ("答案A", "答案B", ...) doubles as the blind label shown to raters
// and as part of the persisted natural key.
type Answer struct {
	ID         string `json:"id" bson:"id"`
	Title      string `json:"title" bson:"title"`
	AgentLabel string `json:"agentLabel" bson:"agentLabel"` // which agent produced it, hidden from raters
	ImageURL   string `json:"imageUrl" bson:"imageUrl"`     // screenshot of the agent's output
}

// Question is one evaluation item of a topic set, immutable during a session
type Question struct {
	ID       int      `json:"id" bson:"_id"`
	TopicID  int      `json:"topicId" bson:"topic_id"`
	Name     string   `json:"name" bson:"name"`
	Scenario string   `json:"scenario" bson:"agent_scene"`
	Answers  []Answer `json:"answers" bson:"answers"`
}

// Answer returns the answer with the given id, nil if not part of the question
func (q *Question) Answer(answerID string) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i]
		}
	}
	return nil
}

// TopicSet groups the questions one rater works through
type TopicSet struct {
	ID          int       `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Creator     string    `json:"creator" bson:"creator"`
	Status      bool      `json:"status" bson:"status"` // open for evaluation
	Description string    `json:"description" bson:"description"`
	RowNum      int       `json:"rowNum" bson:"row_num"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}
