package outbox

// Event is the envelope written to the outbox table inside the transaction
// that produced it. EventType doubles as the Kafka topic; auth emits
// auth.user.created.v1 and auth.audit.v1.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
