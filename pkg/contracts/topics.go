package contracts

// Kafka topics shared by the reservation service (producer) and the
// activity logger (consumer).
const (
	ReservationEventsTopic    = "reservation-events"
	ReservationEventsDLQTopic = "reservation-events-dlq"

	ActivityLoggerGroupID = "activity-logger"
)
