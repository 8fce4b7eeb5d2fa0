package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Metadata(t *testing.T) {
	assert.Equal(t, "serve", mcpServeCmd.Use)
	assert.NotEmpty(t, mcpServeCmd.Short)

	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)
}

func TestMCPCmd_HasServe(t *testing.T) {
	found := false
	for _, c := range mcpCmd.Commands() {
		if c.Name() == "serve" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMCPServeCmd_NotBootstrapped(t *testing.T) {
	prevSettings, prevServices := loadSettingsFn, loadServicesFn
	defer SetBootstrap(prevSettings, prevServices)
	SetBootstrap(nil, nil)
	services, settings = nil, nil

	_, err := executeCommand(t, "mcp", "serve")
	assert.ErrorIs(t, err, errNotBootstrapped)
}
