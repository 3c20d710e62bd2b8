package model

const (
	UsersTable    = "Users"
	MessagesTable = "Messages"
)

type UserItem struct {
	UserID      string `dynamodbav:"userId"`
	GoogleID    string `dynamodbav:"googleId"`
	Email       string `dynamodbav:"email"`
	Username    string `dynamodbav:"username"`
	Role        string `dynamodbav:"role"`
	DisplayName string `dynamodbav:"displayName,omitempty"`
	Picture     string `dynamodbav:"picture,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

// MessageItem rows are keyed by roomId with createdAt as the sort key, so
// history queries read one partition in timestamp order.
type MessageItem struct {
	RoomID         string `dynamodbav:"roomId"`
	CreatedAt      string `dynamodbav:"createdAt"`
	MessageID      string `dynamodbav:"messageId"`
	SenderUserID   string `dynamodbav:"senderUserId"`
	SenderUsername string `dynamodbav:"senderUsername"`
	SenderRole     string `dynamodbav:"senderRole"`
	Text           string `dynamodbav:"text"`
}
