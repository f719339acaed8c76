package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusLabels(t *testing.T) {
	cases := map[OrderStatusCode]string{
		OrderStatusOpen:     "Open",
		OrderStatusFollowUp: "Follow Up",
		OrderStatusRunning:  "Running",
		OrderStatusPending:  "Pending",
		OrderStatusDone:     "Done",
		OrderStatusVerified: "Verified",
	}
	for code, label := range cases {
		assert.Equal(t, label, code.Label())
		assert.True(t, code.IsValid())
	}
	assert.Equal(t, "Unknown", OrderStatusCode(99).Label())
	assert.False(t, OrderStatusCode(99).IsValid())
}

func TestOrderBucketsCoverEveryLabel(t *testing.T) {
	assert.Len(t, OrderBuckets, len(orderStatusLabels))
	for _, code := range OrderBuckets {
		assert.True(t, code.IsValid())
	}
}
