package ast

// Script is the root of a compiled dialogue script.
type Script struct {
	Nodes []*NodeDef
}

// Node returns the node definition with the given name, or nil.
func (s *Script) Node(name string) *NodeDef {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NodeNames returns the node names in definition order.
func (s *Script) NodeNames() []string {
	names := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		names = append(names, n.Name)
	}
	return names
}

// NodeDef is one named top-level block of dialogue content.
type NodeDef struct {
	Name     string
	Metadata map[string]string
	Content  []ContentNode
	Line     int
}

// ContentNode is one unit inside a node or nested block.
type ContentNode interface {
	isContent()
}

// Command is a ContentNode executed for effect rather than display.
type Command interface {
	ContentNode
	isCommand()
}

type Dialogue struct {
	Speaker  string
	Emotion  string
	Segments []TextSegment
	Tags     []string
	Nested   []ContentNode
	Line     int
}

func (*Dialogue) isContent() {}

type Choice struct {
	Segments []TextSegment
	Guard    Expr // nil when unguarded
	Content  []ContentNode
	Line     int
}

func (*Choice) isContent() {}

type Conditional struct {
	Cond    Expr
	Then    []ContentNode
	Elifs   []ElifBranch
	Else    []ContentNode
	HasElse bool
	Line    int
}

func (*Conditional) isContent() {}

type ElifBranch struct {
	Cond    Expr
	Content []ContentNode
}

type JumpCmd struct {
	Target string
	Line   int
}

func (*JumpCmd) isContent() {}
func (*JumpCmd) isCommand() {}

// SetCmd covers var declarations and set/add/sub/mul/div/mod assignments.
type SetCmd struct {
	Name  string
	Op    string // var|set|add|sub|mul|div|mod
	Value Expr
	Line  int
}

func (*SetCmd) isContent() {}
func (*SetCmd) isCommand() {}

type CallCmd struct {
	Call Expr
	Line int
}

func (*CallCmd) isContent() {}
func (*CallCmd) isCommand() {}

type WaitCmd struct {
	Duration Expr
	Line     int
}

func (*WaitCmd) isContent() {}
func (*WaitCmd) isCommand() {}

// TextSegment is one piece of a dialogue or choice line: either literal
// text or an interpolated expression.
type TextSegment interface {
	isSegment()
}

type TextLiteral struct {
	Text string
}

func (TextLiteral) isSegment() {}

type TextInterp struct {
	Expr Expr
}

func (TextInterp) isSegment() {}

type Expr interface {
	isExpr()
}

type NumberLit struct {
	Value float64
}

func (NumberLit) isExpr() {}

type StringLit struct {
	Value string
}

func (StringLit) isExpr() {}

// InterpString is a string literal containing {expr} interpolations.
type InterpString struct {
	Segments []TextSegment
}

func (InterpString) isExpr() {}

type BoolLit struct {
	Value bool
}

func (BoolLit) isExpr() {}

type NullLit struct{}

func (NullLit) isExpr() {}

// VarExpr is a $name variable reference.
type VarExpr struct {
	Name string
}

func (VarExpr) isExpr() {}

// IdentExpr is a bare identifier, resolved against the host environment
// (usually a registered function or constant).
type IdentExpr struct {
	Name string
}

func (IdentExpr) isExpr() {}

type UnaryExpr struct {
	Op      string
	Operand Expr
}

func (UnaryExpr) isExpr() {}

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (BinaryExpr) isExpr() {}

type MemberExpr struct {
	Target Expr
	Name   string
}

func (MemberExpr) isExpr() {}

type IndexExpr struct {
	Target Expr
	Index  Expr
}

func (IndexExpr) isExpr() {}

type CallExpr struct {
	Target Expr
	Args   []Expr
}

func (CallExpr) isExpr() {}
