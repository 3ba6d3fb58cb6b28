package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	b := &Booking{UserID: "owner"}

	assert.True(t, CanAccess(b, "owner", false))
	assert.True(t, CanAccess(b, "someone", true))
	assert.True(t, CanAccess(b, "", true))
	assert.False(t, CanAccess(b, "someone", false))
	assert.False(t, CanAccess(b, "", false))
}
