package lang

//go:generate go tool stringer --linecomment --type Symbol --output symbol_string.go

import "strings"

// Symbol identifies a lexical token kind.
//
// The declaration order is significant: expected-token sets in syntax errors
// are rendered in this order.
type Symbol int

const (
	SymEOF              Symbol = iota // <EOF>
	SymAsTimestamp                    // AS_TIMESTAMP
	SymAssignToGroup                  // ASSIGN_TO_GROUP
	SymGetValue                       // GET_VALUE
	SymCoalesce                       // COALESCE
	SymConcat                         // CONCAT
	SymConvert                        // CONVERT
	SymIf                             // IF
	SymImpact                         // IMPACT
	SymLookup                         // LOOKUP
	SymLowercase                      // LOWERCASE
	SymRef                            // REF
	SymCaml                           // CAML
	SymSet                            // SET
	SymSplit                          // SPLIT
	SymSwitch                         // SWITCH
	SymUppercase                      // UPPERCASE
	SymSearch                         // SEARCH
	SymBoolean                        // BOOLEAN
	SymNull                           // NULL
	SymCustomFunction                 // CUSTOM_FUNCTION
	SymToken                          // TOKEN
	SymQuotedString                   // QUOTED_STRING
	SymNumber                         // NUMBER
	SymScientificNumber               // SCIENTIFIC_NUMBER
	SymLParen                         // '('
	SymMinus                          // '-'
	SymSpace                          // ' '
	SymName                           // NAME
	SymRParen                         // ')'
	SymComma                          // ','
	SymAssign                         // '='
	SymPlus                           // '+'
	SymStar                           // '*'
	SymSlash                          // '/'
	SymCaret                          // '^'
	SymLT                             // '<'
	SymLE                             // '<='
	SymGT                             // '>'
	SymGE                             // '>='
	SymEQ                             // '=='
	SymNE                             // '!='
)

// IsKeyword reports whether s is one of the reserved function keywords
// (including SET).
func (s Symbol) IsKeyword() bool { return s >= SymAsTimestamp && s <= SymSearch }

var keywords = func() map[string]Symbol {
	m := make(map[string]Symbol, SymSearch)
	for s := SymAsTimestamp; s <= SymSearch; s++ {
		m[s.String()] = s
	}

	return m
}()

// keyword returns the keyword symbol for word, matched case-insensitively.
func keyword(word string) (Symbol, bool) {
	s, ok := keywords[strings.ToUpper(word)]

	return s, ok
}

// symbolSet is a set of symbols. Iteration follows declaration order.
type symbolSet uint64

func setOf(syms ...Symbol) symbolSet {
	var s symbolSet
	for _, sym := range syms {
		s |= 1 << sym
	}

	return s
}

func (s symbolSet) has(sym Symbol) bool { return s&(1<<sym) != 0 }

func (s symbolSet) with(syms ...Symbol) symbolSet { return s | setOf(syms...) }

func (s symbolSet) symbols() []Symbol {
	var out []Symbol

	for sym := SymEOF; sym <= SymNE; sym++ {
		if s.has(sym) {
			out = append(out, sym)
		}
	}

	return out
}

var (
	// operandStart holds every symbol that can begin an operand, in the
	// order diagnostics list them.
	operandStart = func() symbolSet {
		var s symbolSet
		for sym := SymAsTimestamp; sym <= SymSpace; sym++ {
			s |= 1 << sym
		}

		return s
	}()

	binaryOps = setOf(
		SymMinus, SymPlus, SymStar, SymSlash, SymCaret,
		SymLT, SymLE, SymGT, SymGE, SymEQ, SymNE,
	)
)
