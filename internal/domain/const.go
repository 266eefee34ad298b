package domain

const (
	RequesterIDCtxKey    = "rp-requesterId"
	RequesterEmailCtxKey = "rp-requesterEmail"
)

// Event types published on the per-user undo channel.
const (
	EventDeleted  = "deleted"
	EventRestored = "restored"
)

// UndoEvent is pushed to clients so the UI can drive its undo-toast
// countdown without polling.
type UndoEvent struct {
	Type              string     `json:"type"`
	EntityKind        EntityKind `json:"entityType"`
	EntityID          string     `json:"entityId"`
	DeletionLogID     string     `json:"deletionLogId"`
	UndoWindowSeconds int        `json:"undoWindowSeconds,omitempty"`
}

// UndoChannel returns the redis pub/sub channel for a user's undo events.
func UndoChannel(userID string) string {
	return "undo:" + userID
}
