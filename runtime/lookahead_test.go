package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talekit/talekit/runtime"
)

func TestNextContentClassification(t *testing.T) {
	src := `--- start
A: first
A: second
-> a
-> b
===`
	rec := &recorder{}
	r := newRunner(t, src, runtime.NewMapEnvironment(), rec)

	require.Equal(t, runtime.NextNone, r.NextContent())

	require.NoError(t, r.Start("start"))
	require.Equal(t, runtime.NextLine, r.NextContent())
	require.True(t, r.HasNextContent())

	require.NoError(t, r.Continue())
	// "second" was shown and the choices were auto-presented.
	require.Equal(t, runtime.NextChoices, r.NextContent())
	require.Equal(t, runtime.StateAwaitingChoice, r.State())
}

func TestNextContentSeesThroughConditions(t *testing.T) {
	src := `--- start
A: intro
if $flag
    A: branch line
endif
===`
	env := runtime.NewMapEnvironment()
	env.SetVariable("flag", runtime.Bool(true))
	rec := &recorder{}
	r := newRunner(t, src, env, rec)

	require.NoError(t, r.Start("start"))
	require.Equal(t, runtime.NextLine, r.NextContent())

	// Lookahead is transient: flipping the flag changes the answer
	// because the condition has not been entered yet.
	env.SetVariable("flag", runtime.Bool(false))
	require.Equal(t, runtime.NextNone, r.NextContent())

	env.SetVariable("flag", runtime.Bool(true))
	require.NoError(t, r.Continue())
	require.Equal(t, []string{"intro", "branch line"}, rec.lines)
}

func TestNextContentDoesNotAdvance(t *testing.T) {
	src := `--- start
A: only line
===`
	rec := &recorder{}
	r := newRunner(t, src, runtime.NewMapEnvironment(), rec)

	require.NoError(t, r.Start("start"))
	for i := 0; i < 5; i++ {
		require.Equal(t, runtime.NextNone, r.NextContent())
	}
	require.Equal(t, []string{"only line"}, rec.lines)
	require.False(t, rec.ended)
}

func TestNextContentJumpCommand(t *testing.T) {
	src := `--- start
A: here
<<jump other>>
===
--- other
B: there
===`
	rec := &recorder{}
	r := newRunner(t, src, runtime.NewMapEnvironment(), rec)

	require.NoError(t, r.Start("start"))
	require.Equal(t, runtime.NextJump, r.NextContent())
}
