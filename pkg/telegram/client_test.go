package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_RequiresConfiguration(t *testing.T) {
	_, err := NewClient("", 42)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient("token", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
