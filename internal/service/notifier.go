package service

import (
	"log"
	"sync"
	"time"
)

// Notifier surfaces non-blocking notices (sync failures, skipped rows) to a
// user without ever unwinding the mutation path that produced them.
type Notifier interface {
	Notify(userID, level, message string)
}

// Notice is one surfaced message, kept until the user polls it
type Notice struct {
	Level     string    `json:"level"` // "warning" or "error"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

const maxNoticesPerUser = 20

// NoticeCenter buffers notices per user for polling over the REST API.
// Oldest notices are dropped once the buffer is full.
type NoticeCenter struct {
	mu      sync.Mutex
	notices map[string][]Notice
}

// NewNoticeCenter creates an empty notice buffer
func NewNoticeCenter() *NoticeCenter {
	return &NoticeCenter{notices: make(map[string][]Notice)}
}

// Notify appends a notice for the user and logs it
func (n *NoticeCenter) Notify(userID, level, message string) {
	log.Printf("[notice] user=%s %s: %s", userID, level, message)

	n.mu.Lock()
	defer n.mu.Unlock()
	buf := append(n.notices[userID], Notice{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(buf) > maxNoticesPerUser {
		buf = buf[len(buf)-maxNoticesPerUser:]
	}
	n.notices[userID] = buf
}

// Drain returns and clears the user's pending notices
func (n *NoticeCenter) Drain(userID string) []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	buf := n.notices[userID]
	delete(n.notices, userID)
	return buf
}
