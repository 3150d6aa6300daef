// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibwatch/pkg/types"
)

func TestRegistryCoversAllSources(t *testing.T) {
	reg := Registry(types.DefaultConfig())

	require.Len(t, reg, len(types.AllSources))
	for _, name := range types.AllSources {
		adapter, ok := reg[name]
		require.True(t, ok, "missing adapter for %s", name)
		assert.Equal(t, name, adapter.Name())
	}
}

func TestSelectDefaultsToAllInPriorityOrder(t *testing.T) {
	cfg := types.DefaultConfig()
	reg := Registry(cfg)

	adapters := Select(reg, types.Query{Text: "q"}, cfg)

	require.Len(t, adapters, len(types.AllSources))
	for i, name := range types.AllSources {
		assert.Equal(t, name, adapters[i].Name())
	}
}

func TestSelectHonorsIncludeAndExclude(t *testing.T) {
	cfg := types.DefaultConfig()
	reg := Registry(cfg)

	q := types.Query{
		Text:    "q",
		Include: []types.Source{types.SourceArxiv, types.SourceCrossref},
		Exclude: []types.Source{types.SourceArxiv},
	}
	adapters := Select(reg, q, cfg)

	require.Len(t, adapters, 1)
	assert.Equal(t, types.SourceCrossref, adapters[0].Name())
}

func TestSelectHonorsEnabledConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Sources.Enabled = []types.Source{types.SourceDOAJ}
	reg := Registry(cfg)

	adapters := Select(reg, types.Query{Text: "q"}, cfg)

	require.Len(t, adapters, 1)
	assert.Equal(t, types.SourceDOAJ, adapters[0].Name())
}
