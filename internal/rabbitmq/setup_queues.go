package rabbitmq

// BroadcastExchange общий exchange рассылок.
const BroadcastExchange = "broadcast"

// BroadcastRoutingKey ключ маршрутизации сообщений рассылки.
const BroadcastRoutingKey = "message"

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetBroadcastQueues возвращает конфигурацию очередей рассылки.
func GetBroadcastQueues(queueName string) []QueueConfig {
	return []QueueConfig{
		{QueueName: queueName, RoutingKey: BroadcastRoutingKey},
	}
}
