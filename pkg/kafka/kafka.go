package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_LOAN_TOPIC" default:"loan-events"`
}

const (
	EventLoanBorrowed = "loan.borrowed"
	EventLoanReturned = "loan.returned"
	EventLoanDeleted  = "loan.deleted"
)

type LoanEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	LoanID     int       `json:"loan_id"`
	BookID     int       `json:"book_id"`
	BorrowerID int       `json:"borrower_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewLoanEvent(typ string, loanID, bookID, borrowerID int) LoanEvent {
	return LoanEvent{
		EventID:    uuid.New().String(),
		Type:       typ,
		LoanID:     loanID,
		BookID:     bookID,
		BorrowerID: borrowerID,
		OccurredAt: time.Now().UTC(),
	}
}

func NewAsyncProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Errors = true

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}
