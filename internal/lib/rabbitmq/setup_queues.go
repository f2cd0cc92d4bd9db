// Package rabbitmq публикует события портала в RabbitMQ: судьбу загруженных
// документов и напоминания об истечении водительских удостоверений.
package rabbitmq

// Обменники и ключи маршрутизации.
const (
	ExchangeDocuments     = "documents"
	ExchangeNotifications = "notifications"

	KeyDocumentUploaded = "document.uploaded"
	KeyDocumentOrphaned = "document.orphaned"
	KeyLicenseExpiring  = "license_expiring"
)

// QueueConfig очередь и ключ, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ExchangeConfig обменник и его очереди.
type ExchangeConfig struct {
	Name   string
	Kind   string
	Queues []QueueConfig
}

// GetTopology возвращает обменники и очереди, которые объявляет портал.
func GetTopology() []ExchangeConfig {
	return []ExchangeConfig{
		{
			Name: ExchangeDocuments,
			Kind: "topic",
			Queues: []QueueConfig{
				{QueueName: "documents.uploaded", RoutingKey: KeyDocumentUploaded},
				{QueueName: "documents.orphaned", RoutingKey: KeyDocumentOrphaned},
			},
		},
		{
			Name: ExchangeNotifications,
			Kind: "direct",
			Queues: []QueueConfig{
				{QueueName: "notifications.license_expiring", RoutingKey: KeyLicenseExpiring},
			},
		},
	}
}
