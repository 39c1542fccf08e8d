package template

import (
	"fmt"
	"strconv"
	"strings"
)

// EvalExpr evaluates an integer expression from a template document, such
// as a repeated item's key, title or offset. Operands are integer literals
// and variables from vars; operators are + - * / with the usual
// precedence, unary minus and parentheses. Division truncates.
//
//	EvalExpr("(i-1)*14", map[string]int{"i": 3}) // 28
func EvalExpr(expr string, vars map[string]int) (int, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, fmt.Errorf("empty expression")
	}
	toks, err := lex(expr)
	if err != nil {
		return 0, err
	}

	e := &evaluator{toks: toks, vars: vars}
	v, err := e.binary(1)
	if err != nil {
		return 0, err
	}
	if t := e.peek(); t.kind != tokEOF {
		return 0, unexpected(t)
	}
	return v, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			toks = append(toks, token{tokNum, s[i:j], i})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(s) && (isIdentStart(s[j]) || isDigit(s[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j], i})
			i = j
		case strings.IndexByte("+-*/", c) >= 0:
			toks = append(toks, token{tokOp, string(c), i})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character '%c' at position %d", c, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }

var precedence = map[string]int{"+": 1, "-": 1, "*": 2, "/": 2}

type evaluator struct {
	toks []token
	i    int
	vars map[string]int
}

func (e *evaluator) peek() token { return e.toks[e.i] }

func (e *evaluator) next() token {
	t := e.toks[e.i]
	if t.kind != tokEOF {
		e.i++
	}
	return t
}

// binary parses operators binding at least as tightly as minPrec.
func (e *evaluator) binary(minPrec int) (int, error) {
	left, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := e.peek()
		prec := precedence[op.text]
		if op.kind != tokOp || prec < minPrec {
			return left, nil
		}
		e.next()
		right, err := e.binary(prec + 1)
		if err != nil {
			return 0, err
		}
		switch op.text {
		case "+":
			left += right
		case "-":
			left -= right
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("division by zero at position %d", op.pos)
			}
			left /= right
		}
	}
}

func (e *evaluator) unary() (int, error) {
	t := e.next()
	switch t.kind {
	case tokEOF:
		return 0, fmt.Errorf("unexpected end of expression")
	case tokNum:
		return strconv.Atoi(t.text)
	case tokIdent:
		v, ok := e.vars[t.text]
		if !ok {
			return 0, fmt.Errorf("undefined variable: %s", t.text)
		}
		return v, nil
	case tokLParen:
		v, err := e.binary(1)
		if err != nil {
			return 0, err
		}
		if closing := e.next(); closing.kind != tokRParen {
			return 0, fmt.Errorf("expected ')' at position %d", closing.pos)
		}
		return v, nil
	case tokOp:
		if t.text == "-" {
			v, err := e.unary()
			if err != nil {
				return 0, err
			}
			return -v, nil
		}
	}
	return 0, unexpected(t)
}

func unexpected(t token) error {
	return fmt.Errorf("unexpected character '%s' at position %d", t.text, t.pos)
}

// ExpandTemplate replaces every {expr} in s with its value. Braces nest,
// so "{{i}" is unmatched.
//
//	ExpandTemplate("Sprint {i} review", map[string]int{"i": 3}) // "Sprint 3 review"
func ExpandTemplate(s string, vars map[string]int) (string, error) {
	var out strings.Builder
	for base := 0; ; {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			out.WriteString(s)
			return out.String(), nil
		}
		out.WriteString(s[:open])

		end := closingBrace(s, open)
		if end < 0 {
			return "", fmt.Errorf("unmatched '{' at position %d", base+open)
		}
		expr := s[open+1 : end]
		v, err := EvalExpr(expr, vars)
		if err != nil {
			return "", fmt.Errorf("evaluating expression '%s': %w", expr, err)
		}
		out.WriteString(strconv.Itoa(v))
		s = s[end+1:]
		base += end + 1
	}
}

// closingBrace returns the index of the brace closing s[open], or -1.
func closingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
