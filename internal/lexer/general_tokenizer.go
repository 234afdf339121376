package lexer

import (
	"lox/internal/token"
)

// NextToken returns the next token, skipping whitespace, comments and any
// characters that could not be scanned (those are recorded as errors).
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespace()
		l.start = l.position

		if l.atEnd() {
			return token.Token{Type: token.EOF, Lexeme: "", Line: l.line}
		}

		tok, ok := l.scanToken()
		l.readChar()
		if ok {
			return tok
		}
	}
}

func (l *Lexer) scanToken() (token.Token, bool) {
	switch l.ch {
	case '(':
		return l.makeToken(token.LPAREN, nil), true
	case ')':
		return l.makeToken(token.RPAREN, nil), true
	case '{':
		return l.makeToken(token.LBRACE, nil), true
	case '}':
		return l.makeToken(token.RBRACE, nil), true
	case ',':
		return l.makeToken(token.COMMA, nil), true
	case '.':
		return l.makeToken(token.PERIOD, nil), true
	case '-':
		return l.makeToken(token.MINUS, nil), true
	case '+':
		return l.makeToken(token.PLUS, nil), true
	case ';':
		return l.makeToken(token.SEMICOLON, nil), true
	case '*':
		return l.makeToken(token.ASTERISK, nil), true
	case '/':
		return l.makeToken(token.SLASH, nil), true
	case '!':
		return l.handleCompoundToken(token.BANG, '=', token.NOT_EQ), true
	case '=':
		return l.handleCompoundToken(token.ASSIGN, '=', token.EQ), true
	case '<':
		return l.handleCompoundToken(token.LT, '=', token.LT_EQ), true
	case '>':
		return l.handleCompoundToken(token.GT, '=', token.GT_EQ), true
	case '"':
		return l.readString()
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return l.makeToken(token.LookupIdent(literal), nil), true
		} else if isDigit(l.ch) {
			tok, err := l.readNumber()
			if err != nil {
				l.addError("Invalid number literal: %v.", err)
				return token.Token{}, false
			}
			return tok, true
		}
		l.addError("Unexpected character '%c'.", l.ch)
		return token.Token{}, false
	}
}
