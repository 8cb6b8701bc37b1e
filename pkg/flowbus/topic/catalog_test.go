package topic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowbus/pkg/flowbus/topic"
)

type orderPlaced struct {
	OrderID string
}

func TestCatalog_Register(t *testing.T) {
	catalog := topic.NewCatalog()

	require.NoError(t, catalog.Register(topic.Entry{
		Topic:       "ORDER.PLACED",
		Description: "an order was accepted",
		Payload:     orderPlaced{},
		Tags:        []string{"orders"},
	}))

	err := catalog.Register(topic.Entry{Topic: "ORDER.PLACED"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	entry, ok := catalog.Get("ORDER.PLACED")
	require.True(t, ok)
	assert.Equal(t, "an order was accepted", entry.Description)

	_, ok = catalog.Get("ORDER.SHIPPED")
	assert.False(t, ok)
}

func TestCatalog_Register_Validation(t *testing.T) {
	catalog := topic.NewCatalog()

	t.Run("empty topic", func(t *testing.T) {
		err := catalog.Register(topic.Entry{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "topic is required")
	})

	t.Run("wildcard topic", func(t *testing.T) {
		err := catalog.Register(topic.Entry{Topic: "ORDER.*"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wildcard")
	})

	t.Run("must register panics", func(t *testing.T) {
		assert.Panics(t, func() {
			catalog.MustRegister(topic.Entry{})
		})
	})
}

func TestCatalog_Matching(t *testing.T) {
	catalog := topic.NewCatalog()
	catalog.MustRegister(topic.Entry{Topic: "ORDER.PLACED", Tags: []string{"orders"}})
	catalog.MustRegister(topic.Entry{Topic: "ORDER.SHIPPED", Tags: []string{"orders", "logistics"}})
	catalog.MustRegister(topic.Entry{Topic: "USER.LOGIN"})

	assert.Equal(t, []string{"ORDER.PLACED", "ORDER.SHIPPED", "USER.LOGIN"}, catalog.Topics())

	matched := catalog.Matching("order.*")
	require.Len(t, matched, 2)
	assert.Equal(t, "ORDER.PLACED", matched[0].Topic)
	assert.Equal(t, "ORDER.SHIPPED", matched[1].Topic)

	tagged := catalog.ListByTag("logistics")
	require.Len(t, tagged, 1)
	assert.Equal(t, "ORDER.SHIPPED", tagged[0].Topic)
}

func TestEntry_Accepts(t *testing.T) {
	typed := topic.Entry{Topic: "ORDER.PLACED", Payload: orderPlaced{}}
	assert.True(t, typed.Accepts(orderPlaced{OrderID: "o-1"}))
	assert.True(t, typed.Accepts(&orderPlaced{OrderID: "o-1"}))
	assert.False(t, typed.Accepts("o-1"))
	assert.False(t, typed.Accepts(nil))

	untyped := topic.Entry{Topic: "ANY"}
	assert.True(t, untyped.Accepts(42))
	assert.True(t, untyped.Accepts(nil))
	assert.Nil(t, untyped.PayloadType())
}
