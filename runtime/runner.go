// Package runtime executes compiled dialogue scripts one beat at a time
// under host control. A Runner owns an explicit frame stack over the
// immutable AST; the host drives it with Start, Continue, SelectChoice,
// and JumpToNode, and observes it through Hooks.
package runtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"github.com/talekit/talekit/ast"
)

var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrNoDialogue        = errors.New("no active dialogue")
	ErrNoChoices         = errors.New("no choices pending")
	ErrChoiceUnavailable = errors.New("choice guard no longer holds")
)

// RunState is the runner's lifecycle state.
type RunState int

const (
	StateIdle RunState = iota
	StateAdvancing
	StateAwaitingChoice
	StateExecuting
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvancing:
		return "advancing"
	case StateAwaitingChoice:
		return "awaiting-choice"
	case StateExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

type frameKind int

const (
	frameNode frameKind = iota
	frameNested
	frameChoice
	frameCondition
)

// frame is one nesting level of the traversal: a node's content list, a
// dialogue's nested block, a choice's block, or a condition's active
// branch. index always points at the next item to process, or one past
// the end when the container is exhausted.
type frame struct {
	kind  frameKind
	items []ast.ContentNode
	index int
	cond  *ast.Conditional // set for frameCondition; items stays nil until a branch is chosen
}

type branchKind int

const (
	branchThen branchKind = iota
	branchElif
	branchElse
)

type chosenBranch struct {
	kind branchKind
	elif int
}

type pendingChoice struct {
	option ChoiceOption
	choice *ast.Choice
}

type Runner struct {
	script *ast.Script
	nodes  map[string]*ast.NodeDef
	env    Environment
	eval   *Evaluator
	hooks  Hooks
	log    zerolog.Logger

	state   RunState
	stack   []frame
	memo    map[*ast.Conditional]chosenBranch
	pending []pendingChoice
	session uuid.UUID
	node    *ast.NodeDef
}

type Option func(*Runner)

func WithEnvironment(env Environment) Option {
	return func(r *Runner) { r.env = env }
}

func WithHooks(hooks Hooks) Option {
	return func(r *Runner) { r.hooks = hooks }
}

func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// NewRunner builds a runner over an immutable script. The script may be
// shared across runners; all mutable traversal state lives here.
func NewRunner(script *ast.Script, opts ...Option) *Runner {
	r := &Runner{
		script: script,
		nodes:  map[string]*ast.NodeDef{},
		log:    zerolog.Nop(),
		memo:   map[*ast.Conditional]chosenBranch{},
	}
	for _, n := range script.Nodes {
		r.nodes[n.Name] = n
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.env == nil {
		r.env = NewMapEnvironment()
	}
	r.eval = NewEvaluator(r.env, r.log)
	return r
}

func (r *Runner) State() RunState {
	return r.state
}

// Session identifies the current (or most recent) dialogue run.
func (r *Runner) Session() uuid.UUID {
	return r.session
}

// CurrentNode returns the node being traversed, or nil when idle.
func (r *Runner) CurrentNode() *ast.NodeDef {
	return r.node
}

// Choices returns the currently pending options, if any.
func (r *Runner) Choices() []ChoiceOption {
	opts := make([]ChoiceOption, 0, len(r.pending))
	for _, pc := range r.pending {
		opts = append(opts, pc.option)
	}
	return opts
}

// Start begins a dialogue at the named node. A missing node is reported
// and leaves the runner's state untouched.
func (r *Runner) Start(nodeName string, startIndex ...int) error {
	if r.state == StateExecuting {
		r.log.Warn().Str("node", nodeName).Msg("start ignored: runner is executing")
		return nil
	}
	node := r.nodes[nodeName]
	if node == nil {
		return r.unknownNode(nodeName)
	}
	idx := 0
	if len(startIndex) > 0 {
		idx = startIndex[0]
		if idx < 0 || idx > len(node.Content) {
			r.log.Error().Int("index", idx).Str("node", nodeName).Msg("start index out of range, clamping to 0")
			idx = 0
		}
	}
	r.reset()
	r.session = uuid.New()
	r.node = node
	r.stack = []frame{{kind: frameNode, items: node.Content, index: idx}}
	r.state = StateAdvancing
	// The started hook completes before any content is shown, so hosts
	// may persist state here.
	if r.hooks.DialogueStarted != nil {
		r.hooks.DialogueStarted(DialogueStartedEvent{Session: r.session, Node: node.Name})
	}
	if r.hooks.NodeStarted != nil {
		r.hooks.NodeStarted(NodeStartedEvent{Session: r.session, Node: node.Name})
	}
	return r.Continue()
}

// Continue advances to the next host-visible beat. Calls made while the
// runner is executing or while choices are pending are no-ops with a
// logged warning.
func (r *Runner) Continue() error {
	switch r.state {
	case StateExecuting:
		r.log.Warn().Msg("continue ignored: already executing")
		return nil
	case StateAwaitingChoice:
		r.log.Warn().Msg("continue ignored: choices are pending")
		return nil
	case StateIdle:
		r.log.Error().Msg("continue called with no active dialogue")
		return ErrNoDialogue
	}
	if len(r.stack) == 0 {
		r.log.Error().Msg("corrupt frame stack, ending dialogue")
		r.finish(EndError)
		return ErrNoDialogue
	}
	r.state = StateExecuting
	err := r.advance()
	if r.state == StateExecuting {
		r.state = StateAdvancing
	}
	return err
}

// SelectChoice answers a pending choice set. The chosen option's guard
// is re-evaluated: state may have changed while the host presented the
// choices.
func (r *Runner) SelectChoice(index int) error {
	if r.state == StateExecuting {
		r.log.Warn().Msg("selectChoice ignored: runner is executing")
		return nil
	}
	if r.state != StateAwaitingChoice {
		r.log.Warn().Int("index", index).Msg("selectChoice called with no choices pending")
		return ErrNoChoices
	}
	if len(r.pending) == 0 {
		r.log.Error().Msg("awaiting choice with empty pending list")
		r.finish(EndError)
		return ErrNoChoices
	}
	if index < 0 || index >= len(r.pending) {
		r.log.Error().Int("index", index).Int("count", len(r.pending)).Msg("choice index out of range, falling back to 0")
		index = 0
	}
	pc := r.pending[index]
	if pc.choice.Guard != nil && !r.evalGuard(pc.choice.Guard, pc.choice.Line) {
		r.log.Warn().Int("index", index).Msg("selected choice is no longer available")
		return ErrChoiceUnavailable
	}
	if r.hooks.ChoiceSelected != nil {
		r.hooks.ChoiceSelected(ChoiceSelectedEvent{Session: r.session, Index: index, Text: pc.option.Text})
	}
	r.pending = nil
	r.state = StateAdvancing
	if len(pc.choice.Content) > 0 {
		r.stack = append(r.stack, frame{kind: frameChoice, items: pc.choice.Content})
	}
	return r.Continue()
}

// JumpToNode discards all traversal state and starts fresh at the target
// node. On failure the dialogue ends rather than staying inconsistent.
func (r *Runner) JumpToNode(name string) error {
	if r.state == StateExecuting {
		r.log.Warn().Str("node", name).Msg("jump ignored: runner is executing")
		return nil
	}
	if r.state == StateIdle {
		r.log.Error().Str("node", name).Msg("jump called with no active dialogue")
		return ErrNoDialogue
	}
	node := r.nodes[name]
	if node == nil {
		err := r.unknownNode(name)
		r.finish(EndError)
		return err
	}
	r.stack = []frame{{kind: frameNode, items: node.Content}}
	r.pending = nil
	r.memo = map[*ast.Conditional]chosenBranch{}
	r.node = node
	r.state = StateAdvancing
	if r.hooks.NodeStarted != nil {
		r.hooks.NodeStarted(NodeStartedEvent{Session: r.session, Node: node.Name})
	}
	return r.Continue()
}

// End force-ends the current dialogue, discarding the frame stack.
func (r *Runner) End() {
	if r.state == StateIdle {
		return
	}
	r.finish(EndStopped)
}

func (r *Runner) reset() {
	r.stack = nil
	r.pending = nil
	r.memo = map[*ast.Conditional]chosenBranch{}
	r.node = nil
}

func (r *Runner) finish(reason EndReason) {
	session := r.session
	r.reset()
	r.state = StateIdle
	if r.hooks.DialogueEnded != nil {
		r.hooks.DialogueEnded(DialogueEndedEvent{Session: session, Reason: reason})
	}
}

// advance walks the frame stack until a host-visible beat is produced:
// a shown line, a presented choice set, or the end of the dialogue.
func (r *Runner) advance() error {
	for {
		if len(r.stack) == 0 {
			r.finish(EndCompleted)
			return nil
		}
		top := &r.stack[len(r.stack)-1]

		if top.kind == frameCondition && top.items == nil {
			r.enterCondition(top)
			continue
		}

		if top.index >= len(top.items) {
			if top.kind == frameNode {
				r.finish(EndCompleted)
				return nil
			}
			r.popFrame()
			continue
		}

		switch item := top.items[top.index].(type) {
		case *ast.Dialogue:
			top.index++
			if len(item.Nested) > 0 {
				r.stack = append(r.stack, frame{kind: frameNested, items: item.Nested})
			}
			text, err := r.eval.EvalText(item.Segments)
			if err != nil {
				r.log.Warn().Err(err).Int("line", item.Line).Msg("text interpolation failed")
			}
			if r.hooks.LineShown != nil {
				r.hooks.LineShown(LineEvent{
					Session: r.session,
					Speaker: item.Speaker,
					Emotion: item.Emotion,
					Text:    text,
					Tags:    item.Tags,
				})
			}
			// Choices are always presented without an intervening
			// host-triggered step.
			if r.NextContent() == NextChoices {
				continue
			}
			return nil

		case *ast.Choice:
			r.collectChoices(top)
			return nil

		case *ast.Conditional:
			top.index++
			r.stack = append(r.stack, frame{kind: frameCondition, cond: item})

		case ast.Command:
			// Advance before executing: an async wait resumes at the
			// item after the command.
			top.index++
			if async := r.execCommand(item); async {
				return nil
			}

		default:
			r.log.Error().Int("index", top.index).Msg("unknown content item, skipping")
			top.index++
		}
	}
}

// collectChoices gathers the run of consecutive Choice items starting at
// the top frame's index, advances the frame past all of them, and enters
// AwaitingChoice.
func (r *Runner) collectChoices(top *frame) {
	r.pending = r.pending[:0]
	for top.index < len(top.items) {
		ch, ok := top.items[top.index].(*ast.Choice)
		if !ok {
			break
		}
		text, err := r.eval.EvalText(ch.Segments)
		if err != nil {
			r.log.Warn().Err(err).Int("line", ch.Line).Msg("choice text interpolation failed")
		}
		available := true
		if ch.Guard != nil {
			available = r.evalGuard(ch.Guard, ch.Line)
		}
		r.pending = append(r.pending, pendingChoice{
			option: ChoiceOption{Index: len(r.pending), Text: text, Available: available},
			choice: ch,
		})
		top.index++
	}
	r.state = StateAwaitingChoice
	if r.hooks.ChoicesShown != nil {
		r.hooks.ChoicesShown(ChoicesEvent{Session: r.session, Options: r.Choices()})
	}
}

// enterCondition selects the branch for a freshly pushed condition frame
// and memoizes the choice; the branch is never re-derived while its
// content is being traversed. A condition with no matching branch and no
// else pops immediately.
func (r *Runner) enterCondition(top *frame) {
	c := top.cond
	if sel, ok := r.memo[c]; ok {
		top.items = branchContent(c, sel)
		return
	}
	sel, matched := r.chooseBranch(c)
	if !matched {
		r.popFrame()
		return
	}
	r.memo[c] = sel
	top.items = branchContent(c, sel)
}

func (r *Runner) chooseBranch(c *ast.Conditional) (chosenBranch, bool) {
	if r.evalGuard(c.Cond, c.Line) {
		return chosenBranch{kind: branchThen}, true
	}
	for i, br := range c.Elifs {
		if r.evalGuard(br.Cond, c.Line) {
			return chosenBranch{kind: branchElif, elif: i}, true
		}
	}
	if c.HasElse {
		return chosenBranch{kind: branchElse}, true
	}
	return chosenBranch{}, false
}

func branchContent(c *ast.Conditional, sel chosenBranch) []ast.ContentNode {
	switch sel.kind {
	case branchThen:
		return c.Then
	case branchElif:
		return c.Elifs[sel.elif].Content
	default:
		return c.Else
	}
}

// evalGuard evaluates a condition or choice guard. It must reduce to a
// strict boolean; anything else is reported and treated as false.
func (r *Runner) evalGuard(expr ast.Expr, line int) bool {
	v, err := r.eval.Eval(expr)
	if err != nil {
		r.log.Warn().Err(err).Int("line", line).Msg("condition evaluation failed, treating as false")
		return false
	}
	b, ok := v.BoolValue()
	if !ok {
		r.log.Warn().Int("line", line).Str("kind", v.Kind().String()).Msg("condition does not reduce to boolean, treating as false")
		return false
	}
	return b
}

// execCommand runs one command. async reports that the host completes
// the command later and will call Continue itself.
func (r *Runner) execCommand(cmd ast.Command) (async bool) {
	switch c := cmd.(type) {
	case *ast.JumpCmd:
		node := r.nodes[c.Target]
		if node == nil {
			r.logUnknownNode(c.Target, c.Line)
			return false
		}
		// A jump replaces the entire frame stack: the old node's
		// remaining content is never visited again.
		r.stack = []frame{{kind: frameNode, items: node.Content}}
		r.memo = map[*ast.Conditional]chosenBranch{}
		r.pending = nil
		r.node = node
		if r.hooks.NodeStarted != nil {
			r.hooks.NodeStarted(NodeStartedEvent{Session: r.session, Node: node.Name})
		}
		return false

	case *ast.SetCmd:
		v, err := r.eval.Eval(c.Value)
		if err != nil {
			r.log.Warn().Err(err).Int("line", c.Line).Str("variable", c.Name).Msg("assignment value failed to evaluate")
			v = Null()
		}
		switch c.Op {
		case "set", "var":
			r.env.SetVariable(c.Name, v)
		default:
			current, _ := r.env.GetVariable(c.Name)
			next, err := ApplyBinary(arithmeticOp(c.Op), current, v)
			if err != nil {
				r.log.Warn().Err(err).Int("line", c.Line).Str("variable", c.Name).Msg("compound assignment failed")
				return false
			}
			r.env.SetVariable(c.Name, next)
		}
		return false

	case *ast.CallCmd:
		if _, err := r.eval.Eval(c.Call); err != nil {
			r.log.Warn().Err(err).Int("line", c.Line).Msg("call command failed")
		}
		return false

	case *ast.WaitCmd:
		v, err := r.eval.Eval(c.Duration)
		if err != nil {
			r.log.Warn().Err(err).Int("line", c.Line).Msg("wait duration failed to evaluate")
			return false
		}
		d := secondsToDuration(v.Float64())
		if r.hooks.WaitRequested != nil && r.hooks.WaitRequested(WaitEvent{Session: r.session, Duration: d}) {
			return true
		}
		return false

	default:
		r.log.Error().Msg("unknown command variant, skipping")
		return false
	}
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func arithmeticOp(word string) string {
	switch word {
	case "add":
		return "+"
	case "sub":
		return "-"
	case "mul":
		return "*"
	case "div":
		return "/"
	case "mod":
		return "%"
	default:
		return word
	}
}

func (r *Runner) popFrame() {
	top := r.stack[len(r.stack)-1]
	if top.kind == frameCondition {
		delete(r.memo, top.cond)
	}
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Runner) unknownNode(name string) error {
	err := fmt.Errorf("%w: %q%s", ErrNodeNotFound, name, r.suggestNode(name))
	r.log.Error().Str("node", name).Msg(err.Error())
	return err
}

func (r *Runner) logUnknownNode(name string, line int) {
	r.log.Error().Str("node", name).Int("line", line).Msgf("jump target not found%s, command ignored", r.suggestNode(name))
}

// suggestNode offers the closest existing node name for a typo'd target.
func (r *Runner) suggestNode(name string) string {
	matches := fuzzy.RankFindFold(name, r.script.NodeNames())
	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Distance < best.Distance {
			best = m
		}
	}
	return fmt.Sprintf(" (did you mean %q?)", best.Target)
}
