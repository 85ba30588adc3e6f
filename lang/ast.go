package lang

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Tree is the immutable result of parsing one formula. A Tree may be
// evaluated any number of times, concurrently, against distinct
// environments.
type Tree struct {
	Source string
	Root   Node
}

// Node is a syntax tree node: [*Literal], [*Variable], [*Unary], [*Binary],
// [*Assign], or [*Call].
type Node interface {
	Pos() Position

	node()
}

// Literal is a number, string, boolean, or null constant. Null has a nil
// Value.
type Literal struct {
	At    Position
	Value Value
}

// Variable references an Environment entry by key.
type Variable struct {
	At   Position
	Name string
}

// Unary is arithmetic negation.
type Unary struct {
	At      Position
	Operand Node
}

// Binary is an arithmetic or comparison operation.
type Binary struct {
	At          Position
	Op          Operator
	Left, Right Node
}

// Assign is the `set :name = expr` form.
type Assign struct {
	At    Position
	Name  string
	Value Node
}

// Call invokes a keyword function or, when Custom is set, a function
// registered with [WithFunction].
type Call struct {
	At     Position
	Name   string // upper-case for keywords, verbatim otherwise
	Custom bool
	Args   []Argument
}

// Argument is a positional (empty Name) or named call argument.
type Argument struct {
	Name  string
	Value Node
}

func (n *Literal) Pos() Position  { return n.At }
func (n *Variable) Pos() Position { return n.At }
func (n *Unary) Pos() Position    { return n.At }
func (n *Binary) Pos() Position   { return n.At }
func (n *Assign) Pos() Position   { return n.At }
func (n *Call) Pos() Position     { return n.At }

func (*Literal) node()  {}
func (*Variable) node() {}
func (*Unary) node()    {}
func (*Binary) node()   {}
func (*Assign) node()   {}
func (*Call) node()     {}

// Operator is a binary operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpLT
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
)

var operatorText = [...]string{"+", "-", "*", "/", "^", "<", "<=", ">", ">=", "==", "!="}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorText) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}

	return operatorText[op]
}

func operatorOf(sym Symbol) Operator {
	switch sym {
	case SymPlus:
		return OpAdd
	case SymMinus:
		return OpSub
	case SymStar:
		return OpMul
	case SymSlash:
		return OpDiv
	case SymCaret:
		return OpPow
	case SymLT:
		return OpLT
	case SymLE:
		return OpLE
	case SymGT:
		return OpGT
	case SymGE:
		return OpGE
	case SymEQ:
		return OpEQ
	default:
		return OpNE
	}
}

// Variables returns the distinct variable keys the tree reads or writes, in
// order of first appearance.
func (t *Tree) Variables() []string {
	var (
		names []string
		seen  = map[string]bool{}
	)

	walk(t.Root, func(n Node) {
		var name string

		switch v := n.(type) {
		case *Variable:
			name = v.Name
		case *Assign:
			name = v.Name
		default:
			return
		}

		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})

	return names
}

func walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}

	fn(n)

	switch v := n.(type) {
	case *Unary:
		walk(v.Operand, fn)
	case *Binary:
		walk(v.Left, fn)
		walk(v.Right, fn)
	case *Assign:
		walk(v.Value, fn)
	case *Call:
		for _, a := range v.Args {
			walk(a.Value, fn)
		}
	}
}

// String renders the tree as canonical formula text with every binary
// operation parenthesized.
func (t *Tree) String() string {
	var sb strings.Builder

	writeNode(&sb, t.Root)

	return sb.String()
}

var plainKey = regexp.MustCompile(`^[\pL\p{Nd}_.:]+$`)

func writeNode(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Literal:
		sb.WriteString(Format(v.Value))

	case *Variable:
		writeKey(sb, v.Name)

	case *Unary:
		sb.WriteByte('-')
		writeNode(sb, v.Operand)

	case *Binary:
		sb.WriteByte('(')
		writeNode(sb, v.Left)
		sb.WriteByte(' ')
		sb.WriteString(v.Op.String())
		sb.WriteByte(' ')
		writeNode(sb, v.Right)
		sb.WriteByte(')')

	case *Assign:
		sb.WriteString("(SET ")
		writeKey(sb, v.Name)
		sb.WriteString(" = ")
		writeNode(sb, v.Value)
		sb.WriteByte(')')

	case *Call:
		sb.WriteString(v.Name)
		sb.WriteByte('(')

		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			if a.Name != "" {
				sb.WriteString(a.Name)
				sb.WriteByte('=')
			}

			writeNode(sb, a.Value)
		}

		sb.WriteByte(')')
	}
}

func writeKey(sb *strings.Builder, name string) {
	sb.WriteByte(':')

	if plainKey.MatchString(name) {
		sb.WriteString(name)
	} else {
		sb.WriteString(quote(name))
	}
}

// Print writes an indented outline of the tree to w.
func (t *Tree) Print(w io.Writer) {
	printNode(w, t.Root, 0, "")
}

func printNode(w io.Writer, n Node, depth int, label string) {
	prefix := strings.Repeat("  ", depth)
	if label != "" {
		prefix += label + ": "
	}

	var text string

	switch v := n.(type) {
	case *Literal:
		kind := "Null"
		if v.Value != nil {
			kind = v.Value.Kind().String()
		}

		text = kind + " " + Format(v.Value)

	case *Variable:
		text = fmt.Sprintf("Variable %q", v.Name)

	case *Unary:
		text = "Negate"

	case *Binary:
		text = "Binary " + v.Op.String()

	case *Assign:
		text = fmt.Sprintf("Set %q", v.Name)

	case *Call:
		text = "Call " + v.Name
		if v.Custom {
			text += " (custom)"
		}
	}

	pos := n.Pos()
	fmt.Fprintf(w, "%s%s @%d:%d\n", prefix, text, pos.Line, pos.Column)

	switch v := n.(type) {
	case *Unary:
		printNode(w, v.Operand, depth+1, "")

	case *Binary:
		printNode(w, v.Left, depth+1, "")
		printNode(w, v.Right, depth+1, "")

	case *Assign:
		printNode(w, v.Value, depth+1, "")

	case *Call:
		for _, a := range v.Args {
			printNode(w, a.Value, depth+1, a.Name)
		}
	}
}
