package enums

// OutboxEventType names the events written to the outbox table and relayed to
// Pub/Sub by the outbox publisher.
type OutboxEventType string

const (
	EventNotificationCreated OutboxEventType = "notification.created"
	EventAcceptanceAdvanced  OutboxEventType = "acceptance.advanced"
	EventCostStatusChanged   OutboxEventType = "cost.status_changed"
)

// OutboxAggregateType names the aggregate a given outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateNotification OutboxAggregateType = "notification"
	AggregateAcceptance   OutboxAggregateType = "acceptance_stage"
	AggregateCost         OutboxAggregateType = "cost"
)
