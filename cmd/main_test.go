package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "import", "migrate", "send-email"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSendEmailCmd_RequiresRecipient(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"send-email", "--subject", "hi"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"to"`)
}

func TestImportCmd_FileFlag(t *testing.T) {
	cmd := newImportCmd()

	require.NoError(t, cmd.Flags().Set("file", "dump.json"))

	value, err := cmd.Flags().GetString("file")
	require.NoError(t, err)
	assert.Equal(t, "dump.json", value)
}
