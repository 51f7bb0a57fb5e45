package notify

import (
	"encoding/json"
	"time"

	"contable/internal/core"
)

// DueAlert tells the notification worker that an owner's due-today set just
// became non-zero. The worker owns the delivery channel (push, email); the
// message carries only what the alert text needs.
type DueAlert struct {
	Owner     string    `json:"owner"`
	DueCount  int       `json:"due_count"`
	Date      string    `json:"date"` // ISO day the alert refers to
	Timestamp time.Time `json:"timestamp"`
}

func NewDueAlert(owner string, dueCount int, day core.Date) *DueAlert {
	return &DueAlert{
		Owner:     owner,
		DueCount:  dueCount,
		Date:      day.ISO(),
		Timestamp: time.Now(),
	}
}

func (m *DueAlert) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DueAlertFromJSON(data []byte) (*DueAlert, error) {
	var msg DueAlert
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
