package commands_test

import (
	"bytes"
	"testing"

	"github.com/ryanmoran/gitferry/internal/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoot(t *testing.T) {
	t.Run("registers the command tree", func(t *testing.T) {
		root := commands.NewRoot()

		var names []string
		for _, cmd := range root.Commands() {
			names = append(names, cmd.Name())
		}
		assert.Contains(t, names, "collect")
		assert.Contains(t, names, "apply")
		assert.Contains(t, names, "images")
		assert.Contains(t, names, "version")
	})

	t.Run("exposes the config flag on every subcommand", func(t *testing.T) {
		root := commands.NewRoot()
		root.SetArgs([]string{"collect", "--help"})
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "--config")
	})

	t.Run("version prints the stamped version", func(t *testing.T) {
		root := commands.NewRoot()
		root.SetArgs([]string{"version"})
		var out bytes.Buffer
		root.SetOut(&out)

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), commands.Version)
	})

	t.Run("apply exposes the init flag", func(t *testing.T) {
		root := commands.NewRoot()
		root.SetArgs([]string{"apply", "--help"})
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "--init")
	})
}
