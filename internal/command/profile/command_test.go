package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwmacct/251207-go-cct/internal/command/profile"
)

func TestNewSetCommand_KeepsCommasInValues(t *testing.T) {
	cmd := profile.NewSetCommand()
	assert.True(t, cmd.DisableSliceFlagSeparator)
}
