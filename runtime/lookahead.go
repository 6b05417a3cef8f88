package runtime

import "github.com/talekit/talekit/ast"

// NextKind classifies what the runner would encounter on the next
// Continue, without advancing it.
type NextKind int

const (
	NextNone NextKind = iota
	NextLine
	NextChoices
	NextCommand
	NextJump
)

func (k NextKind) String() string {
	switch k {
	case NextNone:
		return "none"
	case NextLine:
		return "line"
	case NextChoices:
		return "choices"
	case NextCommand:
		return "command"
	case NextJump:
		return "jump"
	default:
		return "unknown"
	}
}

// NextContent peeks at the upcoming content without mutating traversal
// state. Conditions that have not been entered yet are evaluated
// transiently: their branch choice is not memoized, so the answer
// reflects the environment at the time of the call. Guard expressions
// must therefore be effect-free.
func (r *Runner) NextContent() NextKind {
	if r.state == StateIdle {
		return NextNone
	}
	if r.state == StateAwaitingChoice {
		return NextChoices
	}

	// Walk a copy of the stack; frames are value types so index bumps
	// and branch entry stay local.
	stack := make([]frame, len(r.stack))
	copy(stack, r.stack)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.kind == frameCondition && top.items == nil {
			if sel, ok := r.memo[top.cond]; ok {
				top.items = branchContent(top.cond, sel)
				continue
			}
			sel, matched := r.chooseBranch(top.cond)
			if !matched {
				stack = stack[:len(stack)-1]
				continue
			}
			top.items = branchContent(top.cond, sel)
			continue
		}

		if top.index >= len(top.items) {
			if top.kind == frameNode {
				return NextNone
			}
			stack = stack[:len(stack)-1]
			continue
		}

		switch item := top.items[top.index].(type) {
		case *ast.Dialogue:
			return NextLine
		case *ast.Choice:
			return NextChoices
		case *ast.Conditional:
			top.index++
			stack = append(stack, frame{kind: frameCondition, cond: item})
		case *ast.JumpCmd:
			return NextJump
		case ast.Command:
			return NextCommand
		default:
			top.index++
		}
	}
	return NextNone
}

// HasNextContent reports whether another Continue would produce anything
// before the dialogue ends.
func (r *Runner) HasNextContent() bool {
	return r.NextContent() != NextNone
}
