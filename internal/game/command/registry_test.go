package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("explore")
	assert.True(t, ok)
	assert.Equal(t, "explore", cmd.Name)
	assert.Equal(t, HandlerExplore, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("x")
	assert.True(t, ok)
	assert.Equal(t, "explore", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestResolve_AllCommands(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"explore", HandlerExplore},
		{"att", HandlerAttack},
		{"a", HandlerAttack},
		{"run", HandlerFlee},
		{"b", HandlerBuy},
		{"upgrade", HandlerStats},
		{"w", HandlerWear},
		{"eq", HandlerEquip},
		{"drop", HandlerDrop},
		{"st", HandlerStatus},
		{"replay", HandlerReplay},
		{"?", HandlerHelp},
		{"exit", HandlerQuit},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestLookup(t *testing.T) {
	r := DefaultRegistry()

	cmd, args, ok := r.Lookup("ATT all")
	require.True(t, ok)
	assert.Equal(t, HandlerAttack, cmd.Handler)
	assert.Equal(t, []string{"all"}, args)

	_, _, ok = r.Lookup("   ")
	assert.False(t, ok)
	_, _, ok = r.Lookup("dance")
	assert.False(t, ok)
}

func TestHelp_ListsEveryCommand(t *testing.T) {
	help := DefaultRegistry().Help()
	for _, cmd := range BuiltinCommands() {
		assert.Contains(t, help, cmd.Name)
	}
	assert.Contains(t, help, CategoryCombat+":")
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	cmds := []Command{
		{Name: "test", Handler: "a"},
		{Name: "test", Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	cmds := []Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestCommandsByCategory(t *testing.T) {
	r := DefaultRegistry()
	cats := r.CommandsByCategory()

	assert.Contains(t, cats, CategoryExplore)
	assert.Contains(t, cats, CategoryCombat)
	assert.Contains(t, cats, CategoryMarket)
	assert.Contains(t, cats, CategoryInventory)
	assert.Contains(t, cats, CategorySystem)
	assert.Len(t, cats[CategoryCombat], 2)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}

func TestIsAction(t *testing.T) {
	assert.True(t, IsAction(HandlerExplore))
	assert.True(t, IsAction(HandlerDrop))
	assert.False(t, IsAction(HandlerWear))
	assert.False(t, IsAction(HandlerStatus))
	assert.False(t, IsAction(HandlerQuit))
}
