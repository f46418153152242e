package outbox

// Event is the envelope written to the outbox table inside the transaction
// that produced it. EventType doubles as the Kafka topic; payments emits
// payments.deposit.succeeded.v1 and payments.deposit.failed.v1.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
