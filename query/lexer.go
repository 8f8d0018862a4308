package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes expression strings
type Lexer struct {
	input string
	pos   int // offset of the next rune
	start int // offset of ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.start = l.pos
	if l.pos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readString reads a quoted string. ok is false when the closing quote is
// missing.
func (l *Lexer) readString(quote rune) (s string, ok bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote {
		if l.ch == 0 && l.start >= len(l.input) {
			return result.String(), false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 'r':
				result.WriteRune('\r')
			case '\\':
				result.WriteRune('\\')
			case 0:
				return result.String(), false
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	l.readChar() // skip closing quote
	return result.String(), true
}

// readQuotedIdent reads a `quoted` column name.
func (l *Lexer) readQuotedIdent() (string, bool) {
	l.readChar() // skip opening backquote
	begin := l.start
	for l.ch != '`' {
		if l.start >= len(l.input) {
			return "", false
		}
		l.readChar()
	}
	name := l.input[begin:l.start]
	l.readChar()
	return name, true
}

// readNumber reads an unsigned decimal number with optional fraction and
// exponent. Signs are handled by the parser as unary operators.
func (l *Lexer) readNumber() string {
	begin := l.start

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[begin:l.start]
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	begin := l.start
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[begin:l.start]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.start
	if pos > len(l.input) {
		pos = len(l.input)
	}
	tok := Token{Pos: pos}

	// two-character operators
	two := func(typ TokenType, value string) {
		l.readChar()
		l.readChar()
		tok.Type, tok.Value = typ, value
	}
	one := func(typ TokenType, value string) {
		l.readChar()
		tok.Type, tok.Value = typ, value
	}

	switch l.ch {
	case 0:
		if l.start >= len(l.input) {
			tok.Type = TokenEOF
			return tok
		}
		one(TokenError, "\x00")
	case '=':
		if l.peekChar() == '=' {
			two(TokenEqual, "==")
		} else {
			one(TokenEqual, "=")
		}
	case '!':
		if l.peekChar() == '=' {
			two(TokenNotEqual, "!=")
		} else {
			one(TokenNot, "!")
		}
	case '<':
		switch l.peekChar() {
		case '=':
			two(TokenLessEqual, "<=")
		case '>':
			two(TokenNotEqual, "<>")
		default:
			one(TokenLess, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			two(TokenGreaterEqual, ">=")
		} else {
			one(TokenGreater, ">")
		}
	case '&':
		if l.peekChar() == '&' {
			two(TokenAnd, "&&")
		} else {
			one(TokenError, "&")
		}
	case '|':
		if l.peekChar() == '|' {
			two(TokenOr, "||")
		} else {
			one(TokenError, "|")
		}
	case '+':
		one(TokenPlus, "+")
	case '-':
		one(TokenMinus, "-")
	case '*':
		one(TokenStar, "*")
	case '/':
		one(TokenSlash, "/")
	case '%':
		one(TokenPercent, "%")
	case ',':
		one(TokenComma, ",")
	case '(':
		one(TokenLeftParen, "(")
	case ')':
		one(TokenRightParen, ")")
	case '\'', '"':
		value, ok := l.readString(l.ch)
		if !ok {
			tok.Type, tok.Value = TokenError, "unterminated string"
			return tok
		}
		tok.Type, tok.Value = TokenString, value
	case '`':
		name, ok := l.readQuotedIdent()
		if !ok {
			tok.Type, tok.Value = TokenError, "unterminated quoted identifier"
			return tok
		}
		tok.Type, tok.Value = TokenIdent, name
	default:
		switch {
		case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
			tok.Type, tok.Value = TokenNumber, l.readNumber()
		case unicode.IsLetter(l.ch) || l.ch == '_':
			value := l.readIdentifier()
			tok.Type, tok.Value = identifierType(value), value
		default:
			one(TokenError, string(l.ch))
		}
	}

	return tok
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"false": TokenFalse,
	"null":  TokenNull,
	"none":  TokenNull,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case-insensitive.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToLower(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input, ending with an EOF or error
// token.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
