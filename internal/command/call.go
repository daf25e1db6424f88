// Package command is the dispatch surface the panel talks to: calls written
// in the panel's call syntax, e.g. createLayer("solid", "#ff0000"), are
// parsed, checked against the command catalogue and run on an engine.
package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/ivlev/sniprr/internal/engine"
)

// Call is one parsed command invocation. Args hold string, float64, bool or
// nil (null and undefined) values.
type Call struct {
	Name string
	Args []any
}

// Parse reads a single call such as moveCTI(-1) or doPrecompose(true, "FX").
// Strings may be double-quoted or backquoted; a trailing semicolon is allowed.
func Parse(line string) (Call, error) {
	var call Call
	var scanErr error

	var s scanner.Scanner
	s.Init(strings.NewReader(line))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	s.Error = func(_ *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("parse %q: %s", line, msg)
		}
	}
	fail := func(format string, args ...any) (Call, error) {
		if scanErr != nil {
			return Call{}, scanErr
		}
		return Call{}, fmt.Errorf("parse %q: %s", line, fmt.Sprintf(format, args...))
	}

	if s.Scan() != scanner.Ident {
		return fail("expected command name, got %q", s.TokenText())
	}
	call.Name = s.TokenText()
	if s.Scan() != '(' {
		return fail("expected ( after %s", call.Name)
	}

	tok := s.Scan()
	if tok != ')' {
		for {
			v, err := scanValue(&s, tok)
			if err != nil {
				return fail("%v", err)
			}
			call.Args = append(call.Args, v)

			tok = s.Scan()
			if tok == ')' {
				break
			}
			if tok != ',' {
				return fail("expected , or ) at %s", s.Position)
			}
			tok = s.Scan()
		}
	}

	tok = s.Scan()
	if tok == ';' {
		tok = s.Scan()
	}
	if tok != scanner.EOF {
		return fail("unexpected %q after call", s.TokenText())
	}
	if scanErr != nil {
		return Call{}, scanErr
	}
	return call, nil
}

func scanValue(s *scanner.Scanner, tok rune) (any, error) {
	neg := false
	if tok == '-' || tok == '+' {
		neg = tok == '-'
		tok = s.Scan()
		if tok != scanner.Int && tok != scanner.Float {
			return nil, fmt.Errorf("expected number after sign, got %q", s.TokenText())
		}
	}

	switch tok {
	case scanner.Int, scanner.Float:
		f, err := strconv.ParseFloat(s.TokenText(), 64)
		if err != nil {
			return nil, err
		}
		if neg {
			f = -f
		}
		return f, nil
	case scanner.String, scanner.RawString:
		return strconv.Unquote(s.TokenText())
	case scanner.Ident:
		switch s.TokenText() {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null", "undefined":
			return nil, nil
		}
	}
	return nil, fmt.Errorf("unexpected argument %q", s.TokenText())
}

// String renders the call back in call syntax.
func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		switch v := a.(type) {
		case nil:
			b.WriteString("null")
		case string:
			b.WriteString(strconv.Quote(v))
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (c Call) arg(i int) any {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return nil
}

func (c Call) argError(i int, want string) error {
	return fmt.Errorf("%w: %s argument %d: want %s, got %v", engine.ErrInvalidArgument, c.Name, i+1, want, c.arg(i))
}

// StringArg returns argument i as text. Missing and null arguments are empty.
func (c Call) StringArg(i int) (string, error) {
	switch v := c.arg(i).(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", c.argError(i, "string")
}

// FloatArg returns argument i as a finite number; numeric strings are accepted.
func (c Call) FloatArg(i int) (float64, error) {
	var f float64
	switch v := c.arg(i).(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, c.argError(i, "number")
		}
		f = parsed
	default:
		return 0, c.argError(i, "number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, c.argError(i, "finite number")
	}
	return f, nil
}

// IntArg returns argument i as a whole number.
func (c Call) IntArg(i int) (int, error) {
	f, err := c.FloatArg(i)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, c.argError(i, "integer")
	}
	return int(f), nil
}

// BoolArg returns argument i as a flag. Missing and null arguments are false.
func (c Call) BoolArg(i int) (bool, error) {
	switch v := c.arg(i).(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return false, c.argError(i, "boolean")
}
