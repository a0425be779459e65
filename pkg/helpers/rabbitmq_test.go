package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeadLetterQueue(t *testing.T) {
	assert.Equal(t, "emails.dead", DeadLetterQueue("emails"))
}

func TestRabbitPublisher_CloseNil(t *testing.T) {
	var p *RabbitPublisher
	assert.NotPanics(t, p.Close)
	assert.NotPanics(t, (&RabbitPublisher{}).Close)
}
