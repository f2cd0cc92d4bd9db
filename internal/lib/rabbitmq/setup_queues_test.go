package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTopology(t *testing.T) {
	exchanges := GetTopology()
	require.Len(t, exchanges, 2)

	keys := map[string]string{}
	seen := map[string]bool{}
	for _, ex := range exchanges {
		require.NotEmpty(t, ex.Queues, "exchange %s has no queues", ex.Name)
		for _, q := range ex.Queues {
			assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
			seen[q.QueueName] = true
			keys[q.RoutingKey] = ex.Name
		}
	}

	assert.Equal(t, ExchangeDocuments, keys[KeyDocumentUploaded])
	assert.Equal(t, ExchangeDocuments, keys[KeyDocumentOrphaned])
	assert.Equal(t, ExchangeNotifications, keys[KeyLicenseExpiring])
}
