package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vegasq/munge/dataset"
)

// Parser builds an expression tree from tokens
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
	registry     *FunctionRegistry
}

// SyntaxError reports where parsing stopped
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// NewParser creates a parser over tokens, resolving function calls against
// registry
func NewParser(tokens []Token, registry *FunctionRegistry) *Parser {
	return &Parser{
		tokens:       tokens,
		pos:          0,
		depthCounter: NewExpressionDepthCounter(),
		registry:     registry,
	}
}

// Parse validates and parses an expression
func Parse(src string) (Node, error) {
	if err := ValidateExpression(src); err != nil {
		return nil, err
	}
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyExpression
	}

	tokens := Tokenize(src)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, &SyntaxError{Pos: last.Pos, Msg: fmt.Sprintf("unexpected %q", last.Value)}
	}

	p := NewParser(tokens, GetGlobalRegistry())
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, p.unexpected()
	}
	return node, nil
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

// peek returns the token after the current one
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) expect(typ TokenType) error {
	if p.current().Type != typ {
		return &SyntaxError{
			Pos: p.current().Pos,
			Msg: fmt.Sprintf("expected %s, got %s", typ, describe(p.current())),
		}
	}
	p.advance()
	return nil
}

func (p *Parser) unexpected() error {
	return &SyntaxError{Pos: p.current().Pos, Msg: "unexpected " + describe(p.current())}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of expression"
	case TokenString:
		return strconv.Quote(tok.Value)
	default:
		return fmt.Sprintf("%q", tok.Value)
	}
}

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Node, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

// parseNot parses prefix NOT
func (p *Parser) parseNot() (Node, error) {
	if p.current().Type != TokenNot {
		return p.parseComparison()
	}

	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	p.advance()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &NotExpr{Operand: operand}, nil
}

// parseComparison parses comparison expressions (including IN and NOT IN).
// Comparisons do not chain.
func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	switch p.current().Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		operator := p.current().Type
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Operator: operator, Right: right}, nil
	case TokenIn:
		p.advance()
		return p.parseInList(left, false)
	case TokenNot:
		if p.peek().Type == TokenIn {
			p.advance()
			p.advance()
			return p.parseInList(left, true)
		}
	}

	return left, nil
}

// parseInList parses the parenthesised list after IN
func (p *Parser) parseInList(value Node, negate bool) (Node, error) {
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	var list []Node
	for {
		item, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		list = append(list, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return &InExpr{Value: value, List: list, Negate: negate}, nil
}

// parseAdditive parses + and -
func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		operator := p.current().Type
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: operator, Right: right}
	}

	return left, nil
}

// parseMultiplicative parses *, / and %
func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenStar || p.current().Type == TokenSlash || p.current().Type == TokenPercent {
		operator := p.current().Type
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: operator, Right: right}
	}

	return left, nil
}

// parseUnary parses prefix + and -
func (p *Parser) parseUnary() (Node, error) {
	if p.current().Type != TokenMinus && p.current().Type != TokenPlus {
		return p.parsePrimary()
	}

	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	operator := p.current().Type
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	// fold signed number literals
	if lit, ok := operand.(*Literal); ok {
		if n, ok := lit.Value.Num(); ok {
			if operator == TokenMinus {
				n = -n
			}
			return &Literal{Value: dataset.Number(n)}, nil
		}
	}
	return &UnaryExpr{Operator: operator, Operand: operand}, nil
}

// parsePrimary parses literals, column references, calls and parentheses
func (p *Parser) parsePrimary() (Node, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid number %q", tok.Value)}
		}
		return &Literal{Value: dataset.Number(n)}, nil
	case TokenString:
		p.advance()
		return &Literal{Value: dataset.String(tok.Value)}, nil
	case TokenTrue:
		p.advance()
		return &Literal{Value: dataset.Bool(true)}, nil
	case TokenFalse:
		p.advance()
		return &Literal{Value: dataset.Bool(false)}, nil
	case TokenNull:
		p.advance()
		return &Literal{Value: dataset.Null()}, nil
	case TokenIdent:
		if p.peek().Type == TokenLeftParen {
			return p.parseCall()
		}
		if err := ValidateColumnName(tok.Value); err != nil {
			return nil, err
		}
		p.advance()
		return &ColumnRef{Name: tok.Value}, nil
	case TokenLeftParen:
		if err := p.depthCounter.Enter(); err != nil {
			return nil, err
		}
		defer p.depthCounter.Exit()

		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, p.unexpected()
	}
}

// parseCall parses name(arg, ...) and checks the function's arity
func (p *Parser) parseCall() (Node, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	nameTok := p.current()
	fn, ok := p.registry.Get(nameTok.Value)
	if !ok {
		return nil, &SyntaxError{Pos: nameTok.Pos, Msg: fmt.Sprintf("unknown function %q", nameTok.Value)}
	}
	p.advance() // name
	p.advance() // (

	var args []Node
	if p.current().Type != TokenRightParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	if err := checkArity(fn, len(args)); err != nil {
		return nil, &SyntaxError{Pos: nameTok.Pos, Msg: err.Error()}
	}

	return &CallExpr{Name: strings.ToLower(nameTok.Value), Function: fn, Args: args}, nil
}

func checkArity(fn Function, n int) error {
	if lo := fn.MinArity(); lo >= 0 && n < lo {
		return fmt.Errorf("%s: expected at least %d argument(s), got %d", fn.Name(), lo, n)
	}
	if hi := fn.MaxArity(); hi >= 0 && n > hi {
		return fmt.Errorf("%s: expected at most %d argument(s), got %d", fn.Name(), hi, n)
	}
	return nil
}
