package lexer

import (
	"errors"
	"fmt"
	"log/slog"
	"lox/internal/token"
	"strconv"
	"unicode/utf8"
)

// ScanError is a malformed lexeme. Scanning carries on after one is recorded.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

type Lexer struct {
	input        string
	start        int  // byte position where the current lexeme begins
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int

	errors []*ScanError
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// ScanTokens consumes the whole input. The result always ends with an EOF token.
func (l *Lexer) ScanTokens() []token.Token {
	tokens := make([]token.Token, 0, len(l.input)/4+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	slog.Debug("scanned source",
		slog.Int("tokens", len(tokens)),
		slog.Int("errors", len(l.errors)))
	return tokens
}

func (l *Lexer) Errors() []*ScanError {
	return l.errors
}

func (l *Lexer) addError(format string, args ...any) {
	l.errors = append(l.errors, &ScanError{Line: l.line, Message: fmt.Sprintf(format, args...)})
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	if l.peekChar() == ch1 {
		l.readChar()
		return l.makeToken(t1, nil)
	}
	return l.makeToken(t, nil)
}

// makeToken builds a token from input[start:readPosition], i.e. up to and
// including the current rune.
func (l *Lexer) makeToken(t token.TokenType, literal any) token.Token {
	return token.Token{Type: t, Lexeme: l.input[l.start:l.readPosition], Literal: literal, Line: l.line}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && !l.atEnd() {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions and the line
// counter when stepping past a newline.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier leaves the lexer on the last rune of the identifier.
func (l *Lexer) readIdentifier() string {
	for isLetter(l.peekChar()) || isDigit(l.peekChar()) {
		l.readChar()
	}
	return l.input[l.start:l.readPosition]
}

// readNumber leaves the lexer on the last rune of the number. A '.' only
// belongs to the number when a digit follows it. Literals beyond the float64
// range become +Inf.
func (l *Lexer) readNumber() (token.Token, error) {
	for isDigit(l.peekChar()) {
		l.readChar()
	}
	if l.peekChar() == '.' && isDigit(l.peekTwoChars()) {
		l.readChar() // consume the '.'
		for isDigit(l.peekChar()) {
			l.readChar()
		}
	}
	lexeme := l.input[l.start:l.readPosition]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return token.Token{}, err
	}
	return l.makeToken(token.NUMBER, value), nil
}

// readString is entered on the opening quote. Strings may span lines.
func (l *Lexer) readString() (token.Token, bool) {
	l.readChar() // consume the opening "
	for l.ch != '"' {
		if l.atEnd() {
			l.addError("Unterminated string.")
			return token.Token{}, false
		}
		l.readChar()
	}
	value := l.input[l.start+1 : l.position]
	return l.makeToken(token.STRING, value), true
}

// peekTwoChars returns the rune after next without advancing; returns 0 if unavailable
func (l *Lexer) peekTwoChars() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	idx := l.readPosition + size
	if idx >= len(l.input) {
		return 0
	}
	r2, _ := utf8.DecodeRuneInString(l.input[idx:])
	return r2
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
