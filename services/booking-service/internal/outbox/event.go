package outbox

// Event is the envelope written to the outbox table inside the transaction
// that produced it. EventType doubles as the Kafka topic; booking emits
// booking.confirmed.v1, booking.cancelled.v1 and payments.deposit.requested.v1.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
