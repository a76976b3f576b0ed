package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-jobform/pkg/visibility"
)

// Evaluator interprets string visibility rules.
//
// Supported syntax:
//   - truthiness: `overwrite`, `!overwrite`
//   - equality: `format == "GeoJSON"`, `count != 3`, `notes == null`
//   - ordering: `zoom >= 10`, `buffer < 0.5`
//   - composition with `&&`, `||` and parentheses
//
// Identifiers read form values (dot paths traverse nested maps). The
// `state.` prefix reads the previous visibility state of a field and the
// `extras.` prefix reads caller supplied extras. Comparing a multi-value
// field with `==` matches when any element matches.
type Evaluator struct{}

// New returns an expression evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval parses and evaluates rule. An empty rule is true.
func (e *Evaluator) Eval(field, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return false, fmt.Errorf("%s: %w", field, err)
	}
	if len(tokens) == 0 {
		return true, nil
	}

	node, err := parseExpression(tokens)
	if err != nil {
		return false, fmt.Errorf("%s: %w", field, err)
	}
	return node.eval(ctx)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

var operatorText = map[tokenKind]string{
	tokenEq:  "==",
	tokenNeq: "!=",
	tokenLt:  "<",
	tokenLte: "<=",
	tokenGt:  ">",
	tokenGte: ">=",
}

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || strings.IndexByte("()!=&|<>", ch) >= 0
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}
	emit := func(kind tokenKind, raw string) {
		tokens = append(tokens, token{kind: kind, raw: raw})
		i += len(raw)
	}

	for i < len(input) {
		ch := input[i]
		switch {
		case isSpace(ch):
			i++
		case ch == '(':
			emit(tokenLParen, "(")
		case ch == ')':
			emit(tokenRParen, ")")
		case ch == '!' && peek(1) == '=':
			emit(tokenNeq, "!=")
		case ch == '!':
			emit(tokenNot, "!")
		case ch == '=' && peek(1) == '=':
			emit(tokenEq, "==")
		case ch == '=':
			return nil, errors.New("visibility/expr: unexpected '='; use '=='")
		case ch == '<' && peek(1) == '=':
			emit(tokenLte, "<=")
		case ch == '<':
			emit(tokenLt, "<")
		case ch == '>' && peek(1) == '=':
			emit(tokenGte, ">=")
		case ch == '>':
			emit(tokenGt, ">")
		case ch == '&' && peek(1) == '&':
			emit(tokenAnd, "&&")
		case ch == '&':
			return nil, errors.New("visibility/expr: unexpected '&'; use '&&'")
		case ch == '|' && peek(1) == '|':
			emit(tokenOr, "||")
		case ch == '|':
			return nil, errors.New("visibility/expr: unexpected '|'; use '||'")
		case ch == '"' || ch == '\'':
			value, width, err := readString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i += width
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classifyWord(input[start:i]))
		}
	}
	return tokens, nil
}

// readString decodes a quoted literal at the start of input and reports how
// many bytes it consumed.
func readString(input string) (string, int, error) {
	quote := input[0]
	escaped := false
	for j := 1; j < len(input); j++ {
		c := input[j]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == quote:
			body := input[1:j]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `\'`, `'`)
				body = strings.ReplaceAll(body, `"`, `\"`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return "", 0, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			return value, j + 1, nil
		}
	}
	return "", 0, errors.New("visibility/expr: unterminated string literal")
}

func classifyWord(word string) token {
	switch strings.ToLower(word) {
	case "true", "false":
		return token{kind: tokenBool, raw: strings.ToLower(word)}
	case "null", "nil":
		return token{kind: tokenNull, raw: "null"}
	}
	if strings.IndexByte("0123456789+-.", word[0]) >= 0 {
		if _, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokenNumber, raw: word}
		}
	}
	return token{kind: tokenIdentifier, raw: word}
}

type exprNode interface {
	eval(ctx visibility.Context) (bool, error)
}

type exprOr struct{ left, right exprNode }

func (n exprOr) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type exprAnd struct{ left, right exprNode }

func (n exprAnd) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type exprNot struct{ inner exprNode }

func (n exprNot) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type exprTruthy struct{ identifier string }

func (n exprTruthy) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

type exprCompare struct {
	identifier string
	op         tokenKind
	literal    token
}

func (n exprCompare) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.identifier)

	switch n.op {
	case tokenEq, tokenNeq:
		match := false
		if items, ok := value.([]any); ok && n.literal.kind != tokenNull {
			for _, item := range items {
				if n.matches(item) {
					match = true
					break
				}
			}
		} else {
			match = n.matches(value)
		}
		if n.op == tokenNeq {
			return !match, nil
		}
		return match, nil
	}

	if n.literal.kind != tokenNumber {
		return false, fmt.Errorf("visibility/expr: operator %q needs a number", operatorText[n.op])
	}
	want, _ := strconv.ParseFloat(n.literal.raw, 64)
	got, ok := coerceNumber(value)
	if !ok {
		return false, nil
	}
	switch n.op {
	case tokenLt:
		return got < want, nil
	case tokenLte:
		return got <= want, nil
	case tokenGt:
		return got > want, nil
	default:
		return got >= want, nil
	}
}

func (n exprCompare) matches(value any) bool {
	switch n.literal.kind {
	case tokenNull:
		return value == nil || value == ""
	case tokenBool:
		got, _ := coerceBool(value)
		return got == (n.literal.raw == "true")
	case tokenNumber:
		want, _ := strconv.ParseFloat(n.literal.raw, 64)
		got, ok := coerceNumber(value)
		return ok && got == want
	default:
		return coerceString(value) == n.literal.raw
	}
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseExpression(tokens []token) (exprNode, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.next()
	if !ok {
		return nil, errors.New("visibility/expr: empty expression")
	}
	if ident.kind != tokenIdentifier {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", ident.raw)
	}

	op, ok := stream.peek()
	if !ok {
		return exprTruthy{identifier: ident.raw}, nil
	}
	if _, isOperator := operatorText[op.kind]; !isOperator {
		return exprTruthy{identifier: ident.raw}, nil
	}
	stream.pos++

	lit, ok := stream.next()
	if !ok {
		return nil, errors.New("visibility/expr: missing literal")
	}
	switch lit.kind {
	case tokenString, tokenNumber, tokenBool, tokenNull:
	case tokenIdentifier:
		// Bare words compare as strings.
		lit.kind = tokenString
	default:
		return nil, fmt.Errorf("visibility/expr: expected literal, got %q", lit.raw)
	}
	return exprCompare{identifier: ident.raw, op: op.kind, literal: lit}, nil
}

func (s *tokenStream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) next() (token, bool) {
	tok, ok := s.peek()
	if ok {
		s.pos++
	}
	return tok, ok
}

func (s *tokenStream) match(kind tokenKind) bool {
	tok, ok := s.peek()
	if !ok || tok.kind != kind {
		return false
	}
	s.pos++
	return true
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	key = strings.TrimSpace(key)
	lower := strings.ToLower(key)
	switch {
	case key == "":
		return nil, false
	case strings.HasPrefix(lower, "extras."):
		return lookupMap(ctx.Extras, key[len("extras."):])
	case strings.HasPrefix(lower, "state."):
		state, ok := ctx.States[key[len("state."):]]
		return string(state), ok
	default:
		return lookupMap(ctx.Values, key)
	}
}

func lookupMap(values map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if len(values) == 0 || path == "" {
		return nil, false
	}
	// Parameter names may contain dots, so try the whole key first.
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[strings.TrimSpace(part)]; !ok {
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.TrimSpace(v)
		return s != "" && !strings.EqualFold(s, "false") && s != "0"
	case float64:
		return v != 0
	case int:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "on":
			return true, true
		case "no", "off":
			return false, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}
