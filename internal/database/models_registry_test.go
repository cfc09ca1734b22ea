package database

import (
	"testing"

	modelspkg "ripple/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesChatMessage(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.ChatMessage); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include ChatMessage")
}
