package audit

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Event is one audit record. It is emitted as flat logrus fields.
type Event struct {
	Timestamp     time.Time
	EventType     string
	TransactionID int64
	UserID        string
	Amount        int64
	Balance       int64
	Status        string
	Details       any
}

// Logger writes one structured "AUDIT" line per ledger state change.
type Logger struct {
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewLogger(logger logrus.FieldLogger) *Logger {
	return &Logger{logger: logger, now: time.Now}
}

func (a *Logger) LogMutation(eventType string, transactionID int64, userID string, amount, balance int64, details map[string]string) {
	a.log(Event{
		Timestamp:     a.now(),
		EventType:     eventType,
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Balance:       balance,
		Status:        "SUCCESS",
		Details:       details,
	})
}

// LogRejected records an operation that was refused without touching state,
// such as a debit against too few credits or a replayed purchase.
func (a *Logger) LogRejected(eventType, userID string, amount int64, reason string) {
	a.log(Event{
		Timestamp: a.now(),
		EventType: eventType,
		UserID:    userID,
		Amount:    amount,
		Status:    "REJECTED",
		Details:   map[string]string{"reason": reason},
	})
}

func (a *Logger) LogError(eventType, userID string, amount int64, err error) {
	a.log(Event{
		Timestamp: a.now(),
		EventType: eventType,
		UserID:    userID,
		Amount:    amount,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	a.logger.WithFields(logrus.Fields{
		"audit":          true,
		"event_type":     event.EventType,
		"transaction_id": event.TransactionID,
		"user_id":        event.UserID,
		"amount":         event.Amount,
		"balance":        event.Balance,
		"status":         event.Status,
		"details":        event.Details,
		"occurred_at":    event.Timestamp,
	}).Info("AUDIT")
}
