package kafka

// NewWithProducer builds a Publisher around a test double.
func NewWithProducer(client producer, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

type Producer = producer
