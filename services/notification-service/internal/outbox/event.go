package outbox

// Event is the envelope written to the outbox table inside the transaction
// that produced it. EventType doubles as the Kafka topic; notification emits
// notification.sent.v1 and notification.failed.v1 delivery receipts.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
