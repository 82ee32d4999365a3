package jobs

const (
	// TaskTypeUserCreated はユーザー作成後に投入されるタスクです。
	TaskTypeUserCreated = "user:created"

	queueUsers = "users"
)

// TaskPayload は user:created タスクのペイロードです。
type TaskPayload struct {
	UserID string `json:"userId"`
}
