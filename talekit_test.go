package talekit_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/talekit/talekit"
	"github.com/talekit/talekit/runtime"
)

func TestCompileAndRunBasicFlow(t *testing.T) {
	src := `--- start
[mood: tense]
Guard: Halt! Who goes there?
-> A friend <<if $reputation >= 0>>
    Guard: Pass, friend.
    <<jump gate>>
-> Nobody
    Guard: Very funny.
===
--- gate
The gate creaks open.
===`

	env := runtime.NewMapEnvironment()
	env.SetVariable("reputation", runtime.Num(5))

	var lines []string
	var options []runtime.ChoiceOption
	ended := false
	hooks := runtime.Hooks{
		LineShown: func(ev runtime.LineEvent) {
			lines = append(lines, ev.Text)
		},
		ChoicesShown: func(ev runtime.ChoicesEvent) {
			options = ev.Options
		},
		DialogueEnded: func(ev runtime.DialogueEndedEvent) {
			ended = true
		},
	}

	runner, diags, err := talekit.Compile(src,
		runtime.WithEnvironment(env),
		runtime.WithHooks(hooks),
	)
	if err != nil {
		t.Fatalf("compile failed: %v (diags: %v)", err, diags)
	}

	if err := runner.Start("start"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("choice count: got %d, want 2", len(options))
	}
	if !options[0].Available {
		t.Fatalf("guarded choice should be available with reputation 5")
	}
	if err := runner.SelectChoice(0); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := runner.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}
	if err := runner.Continue(); err != nil {
		t.Fatalf("continue failed: %v", err)
	}

	want := []string{
		"Halt! Who goes there?",
		"Pass, friend.",
		"The gate creaks open.",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines: got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
	if !ended {
		t.Fatalf("dialogue did not end")
	}
}

func TestCompileReportsErrors(t *testing.T) {
	_, diags, err := talekit.Compile("--- a\n<<jump>>\n===")
	if !errors.Is(err, talekit.ErrCompile) {
		t.Fatalf("expected ErrCompile, got %v", err)
	}
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics alongside the error")
	}
}

func TestParseForTooling(t *testing.T) {
	script, diags := talekit.Parse("--- one\nA: hi\n===\n--- two\nB: ho\n===")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	names := script.NodeNames()
	if strings.Join(names, ",") != "one,two" {
		t.Fatalf("node names: %v", names)
	}
}

func TestScriptSharedAcrossRunners(t *testing.T) {
	src := `--- start
A: {$who} speaking
===`
	script, diags := talekit.Parse(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	run := func(who string) string {
		env := runtime.NewMapEnvironment()
		env.SetVariable("who", runtime.Str(who))
		var got string
		r := runtime.NewRunner(script,
			runtime.WithEnvironment(env),
			runtime.WithHooks(runtime.Hooks{
				LineShown: func(ev runtime.LineEvent) { got = ev.Text },
			}),
		)
		if err := r.Start("start"); err != nil {
			t.Fatalf("start: %v", err)
		}
		return got
	}

	if a, b := run("alpha"), run("beta"); a != "alpha speaking" || b != "beta speaking" {
		t.Fatalf("runners interfered: %q / %q", a, b)
	}
}
