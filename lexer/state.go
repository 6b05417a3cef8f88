package lexer

// State is the set of orthogonal mode flags that gate which tokenizer may
// fire. String scanning takes priority over command handling while both
// are active; interpolation depth only moves inside a string or a text
// line and must return to zero before the enclosing construct closes.
type State struct {
	InNodeBody  bool
	InCommand   bool
	QuoteChar   rune // non-zero while inside a string
	InterpDepth int

	// Per-line context, reset at every NEWLINE.
	InHeader      bool // between a line-start speaker identifier and its colon
	InExprLine    bool // rest of line is an expression (after if/elif)
	ColonSeen     bool // the speaker colon of this line was consumed
	AfterHash     bool // next word is a tag identifier
	AfterNode     bool // next word is a node name (after ---)
	indentChecked bool // indentation already evaluated for this line
}

func (s *State) InString() bool {
	return s.QuoteChar != 0
}

func (s *State) InInterpolation() bool {
	return s.InterpDepth > 0
}

// ResetLine clears the per-line flags at a line boundary.
func (s *State) ResetLine() {
	s.InHeader = false
	s.InExprLine = false
	s.ColonSeen = false
	s.AfterHash = false
	s.AfterNode = false
	s.indentChecked = false
}

// IndentationState is the stack of indent widths, base level 0. The stack
// is monotonically increasing bottom to top; every Indent pushes one level
// and every Dedent pops exactly one.
type IndentationState struct {
	levels  []int
	pending int // queued Dedents, emitted one per driver pass
}

func newIndentationState() IndentationState {
	return IndentationState{levels: []int{0}}
}

func (s *IndentationState) top() int {
	return s.levels[len(s.levels)-1]
}

func (s *IndentationState) push(width int) {
	s.levels = append(s.levels, width)
}

func (s *IndentationState) pop() {
	if len(s.levels) > 1 {
		s.levels = s.levels[:len(s.levels)-1]
	}
}

// depth is the number of open indent levels above the base.
func (s *IndentationState) depth() int {
	return len(s.levels) - 1
}
