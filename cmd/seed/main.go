package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agenteval/internal/config"
	"agenteval/internal/model"
	"agenteval/internal/repository"
)

// Seeds a fresh database with the admin account, one demo rater, and a demo
// topic set so the evaluation flow can be exercised end to end.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	users := repository.NewUserRepo(db)
	topics := repository.NewTopicRepo(db)

	// Admin account
	admin := &model.User{
		UserName: cfg.AdminUser,
		Password: cfg.AdminPass,
		Role:     model.RoleAdmin,
	}
	if existing, err := users.GetByUsername(ctx, admin.UserName); err != nil {
		log.Fatalf("Lookup admin: %v", err)
	} else if existing == nil {
		if err := users.Create(ctx, admin); err != nil {
			log.Fatalf("Create admin: %v", err)
		}
		log.Printf("Created admin %q", admin.UserName)
	} else {
		admin = existing
		log.Printf("Admin %q already exists", admin.UserName)
	}

	// Demo topic set
	set := &model.TopicSet{
		Name:        "演示题库",
		Description: "Demo question set for trying out the scoring flow",
		Creator:     admin.UserName,
		Status:      true,
	}
	topicID, err := topics.CreateSet(ctx, set)
	if err != nil {
		log.Fatalf("Create topic set: %v", err)
	}
	log.Printf("Created topic set %d", topicID)

	agents := []string{"minimax", "qwen", "deepseek", "chatgpt", "manus", "navos"}
	maxID, err := topics.MaxQuestionID(ctx)
	if err != nil {
		log.Fatalf("Max question id: %v", err)
	}

	var questions []model.Question
	scenarios := []string{"行程规划", "数据分析", "文档撰写"}
	for i := 0; i < 3; i++ {
		qid := maxID + i + 1
		q := model.Question{
			ID:       qid,
			TopicID:  topicID,
			Name:     fmt.Sprintf("演示题目 %d", i+1),
			Scenario: scenarios[i],
		}
		for j, agent := range agents {
			q.Answers = append(q.Answers, model.Answer{
				ID:         fmt.Sprintf("%d-%d", qid, j+1),
				Title:      fmt.Sprintf("答案%c", 'A'+j),
				AgentLabel: agent,
				ImageURL:   fmt.Sprintf("https://example.com/demo/q%d_%s.png", qid, agent),
			})
		}
		questions = append(questions, q)
	}
	if err := topics.ReplaceQuestions(ctx, topicID, questions); err != nil {
		log.Fatalf("Insert questions: %v", err)
	}
	log.Printf("Inserted %d questions", len(questions))

	// Demo rater assigned to the new set
	rater := &model.User{
		UserName: "rater1",
		Password: "rater123",
		Role:     model.RoleRater,
	}
	if existing, err := users.GetByUsername(ctx, rater.UserName); err != nil {
		log.Fatalf("Lookup rater: %v", err)
	} else if existing == nil {
		if err := users.Create(ctx, rater); err != nil {
			log.Fatalf("Create rater: %v", err)
		}
		log.Printf("Created rater %q", rater.UserName)
	} else {
		rater = existing
	}
	mapping := &model.UserTopicMapping{
		UserID:   rater.ID,
		UserName: rater.UserName,
		TopicID:  topicID,
	}
	if err := users.UpsertTopicMapping(ctx, mapping); err != nil {
		log.Fatalf("Assign topic: %v", err)
	}
	log.Printf("Assigned topic %d to %q", topicID, rater.UserName)

	log.Println("Seed complete")
}
