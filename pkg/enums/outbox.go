package enums

// OutboxEventType names the domain events emitted through the outbox.
type OutboxEventType string

const (
	EventPaymentInitiated OutboxEventType = "payment.initiated"
	EventPaymentUpdated   OutboxEventType = "payment.updated"
)

// OutboxAggregateType names the owning aggregate of an outbox event.
type OutboxAggregateType string

const (
	AggregatePayment OutboxAggregateType = "payment"
	AggregateOrder   OutboxAggregateType = "order"
)
