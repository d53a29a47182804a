package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	steps := down.Flags().Lookup("steps")
	require.NotNil(t, steps)
	assert.Equal(t, "1", steps.DefValue)

	up, _, err := root.Find([]string{"migrate", "up"})
	require.NoError(t, err)
	assert.NotNil(t, up.Flags().Lookup("demo"))
}

func TestRegisterSnowflake(t *testing.T) {
	node := RegisterSnowflake()
	assert.NotEqual(t, node.Generate(), node.Generate())
}
