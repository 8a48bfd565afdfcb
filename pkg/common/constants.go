package common

const (
	// RedisStreamScheduleRunCompleted carries one event per schedule firing.
	RedisStreamScheduleRunCompleted = "schedule.run.completed"

	RedisStreamGroup    = "notifier-group"
	RedisStreamConsumer = "notifier-consumer"

	// LeaseKeyPrefix namespaces per-schedule firing leases.
	LeaseKeyPrefix = "lease:schedule:"
)
