package service

import (
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/vshaniya/library-manager/pkg/kafka"
)

type EventLog interface {
	Log(ev kafka.LoanEvent) error
}

type loanLog struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewLoanLog(producer sarama.AsyncProducer, topic string) *loanLog {
	return &loanLog{
		producer: producer,
		topic:    topic,
	}
}

func (l *loanLog) Log(ev kafka.LoanEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: l.topic, Value: sarama.StringEncoder(data)}
	l.producer.Input() <- msg
	return nil
}
