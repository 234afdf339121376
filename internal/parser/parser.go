package parser

import (
	"fmt"
	"log/slog"

	"lox/internal/ast"
	"lox/internal/object"
	"lox/internal/token"
	"lox/internal/util"
)

const (
	_          int = iota
	LOWEST         // statement level
	ASSIGNMENT     // =
	LOGICAL_OR     // or
	LOGICAL_AND    // and
	EQUALS         // == or !=
	COMPARISON     // > or <
	SUM            // +
	PRODUCT        // *
	PREFIX         // -X or !X
	CALL           // myFunction(X)
)

// MaxArgs caps both call arguments and declared parameters.
const MaxArgs = 255

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGNMENT,
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// ParseError is a syntax error located at the token where it was detected.
type ParseError struct {
	Token   token.Token
	Message string
}

func (pe *ParseError) Error() string {
	where := fmt.Sprintf(" at '%s'", pe.Token.Lexeme)
	if pe.Token.Type == token.EOF {
		where = " at end"
	}
	return util.FormatDiagnostic(pe.Token.Line, where, pe.Message)
}

// bailout unwinds the parser to the enclosing declaration after an error.
type bailout struct{}

type Parser struct {
	tokens   []token.Token
	position int
	errors   []*ParseError

	curToken  token.Token
	peekToken token.Token

	functionDepth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Line: line})
	}

	p := &Parser{
		tokens: tokens,
		errors: []*ParseError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.IDENT, p.parseVariable)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseLogicalExpression)
	p.registerInfix(token.OR, p.parseLogicalExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken advances through the token slice. Once the input is exhausted
// both curToken and peekToken stay on EOF.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.position < len(p.tokens) {
		p.peekToken = p.tokens[p.position]
		p.position++
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// addError records a diagnostic without interrupting the parse.
func (p *Parser) addError(tok token.Token, message string) {
	p.errors = append(p.errors, &ParseError{Token: tok, Message: message})
}

// fail records a diagnostic at the current token and abandons the
// declaration being parsed.
func (p *Parser) fail(message string) {
	p.addError(p.curToken, message)
	panic(bailout{})
}

// expectPeek advances onto the next token, failing with message when it is
// not of type t.
func (p *Parser) expectPeek(t token.TokenType, message string) {
	p.nextToken()
	if !p.curTokenIs(t) {
		p.fail(message)
	}
}

func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// ParseProgram parses declarations until EOF. A declaration with a syntax
// error is dropped and parsing resumes at the next statement boundary.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	slog.Debug("parsed program",
		slog.Int("statements", len(program.Statements)),
		slog.Int("errors", len(p.errors)))

	return program
}

func (p *Parser) parseDeclaration() (stmt ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch p.curToken.Type {
	case token.VAR:
		return p.parseVarStatement()
	case token.FUNCTION:
		return p.parseFunctionStatement()
	default:
		return p.parseStatement()
	}
}

// synchronize skips tokens until the current one ends a statement or the
// next one starts a new statement.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case token.CLASS, token.FUNCTION, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.PRINT:
		return p.parsePrintStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken}

	p.expectPeek(token.IDENT, "Expect variable name.")
	stmt.Name = p.curToken

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Initializer = p.parseExpression(LOWEST)
	}

	p.expectPeek(token.SEMICOLON, "Expect ';' after variable declaration.")
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	p.expectPeek(token.IDENT, "Expect function name.")
	stmt.Name = p.curToken

	p.expectPeek(token.LPAREN, "Expect '(' after function name.")
	stmt.Parameters = p.parseFunctionParameters()

	p.expectPeek(token.LBRACE, "Expect '{' before function body.")

	p.functionDepth++
	defer func() { p.functionDepth-- }()
	stmt.Body = p.parseBlockStatement().Statements

	return stmt
}

// parseFunctionParameters expects curToken on '(' and leaves it on ')'.
func (p *Parser) parseFunctionParameters() []token.Token {
	parameters := []token.Token{}

	if !p.peekTokenIs(token.RPAREN) {
		for {
			if len(parameters) >= MaxArgs {
				p.addError(p.peekToken, fmt.Sprintf("Can't have more than %d parameters.", MaxArgs))
			}
			p.expectPeek(token.IDENT, "Expect parameter name.")
			parameters = append(parameters, p.curToken)

			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken() // Consume comma
		}
	}

	p.expectPeek(token.RPAREN, "Expect ')' after parameters.")
	return parameters
}

func (p *Parser) parsePrintStatement() *ast.PrintStatement {
	stmt := &ast.PrintStatement{Token: p.curToken}

	p.nextToken()
	stmt.Expression = p.parseExpression(LOWEST)

	p.expectPeek(token.SEMICOLON, "Expect ';' after value.")
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.functionDepth == 0 {
		p.addError(p.curToken, "Can't return from top-level code.")
	}

	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.ReturnValue = p.parseExpression(LOWEST)
	}

	p.expectPeek(token.SEMICOLON, "Expect ';' after return value.")
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.fail("Expect '}' after block.")
	}

	return block
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.expectPeek(token.LPAREN, "Expect '(' after 'if'.")
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	p.expectPeek(token.RPAREN, "Expect ')' after if condition.")

	p.nextToken()
	stmt.Consequence = p.parseStatement()

	// A dangling else binds to the nearest if.
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternative = p.parseStatement()
	}

	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.expectPeek(token.LPAREN, "Expect '(' after 'while'.")
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	p.expectPeek(token.RPAREN, "Expect ')' after condition.")

	p.nextToken()
	stmt.Body = p.parseStatement()

	return stmt
}

// parseForStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
//
// A missing condition loops forever.
func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	p.expectPeek(token.LPAREN, "Expect '(' after 'for'.")
	p.nextToken()

	var initializer ast.Statement
	switch p.curToken.Type {
	case token.SEMICOLON:
	case token.VAR:
		initializer = p.parseVarStatement()
	default:
		initializer = p.parseExpressionStatement()
	}
	p.nextToken()

	var condition ast.Expression
	if !p.curTokenIs(token.SEMICOLON) {
		condition = p.parseExpression(LOWEST)
		p.expectPeek(token.SEMICOLON, "Expect ';' after loop condition.")
	}
	p.nextToken()

	var increment ast.Expression
	incrementToken := p.curToken
	if !p.curTokenIs(token.RPAREN) {
		increment = p.parseExpression(LOWEST)
		p.expectPeek(token.RPAREN, "Expect ')' after for clauses.")
	}

	p.nextToken()
	body := p.parseStatement()

	if increment != nil {
		body = &ast.BlockStatement{
			Token: forToken,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: incrementToken, Expression: increment},
			},
		}
	}

	if condition == nil {
		condition = &ast.Literal{Token: forToken, Value: object.TRUE}
	}
	var loop ast.Statement = &ast.WhileStatement{Token: forToken, Condition: condition, Body: body}

	if initializer != nil {
		loop = &ast.BlockStatement{
			Token:      forToken,
			Statements: []ast.Statement{initializer, loop},
		}
	}

	return loop
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)

	p.expectPeek(token.SEMICOLON, "Expect ';' after expression.")
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail("Expect expression.")
	}
	leftExp := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseVariable() ast.Expression {
	return &ast.Variable{Token: p.curToken, Name: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, ok := p.curToken.Literal.(float64)
	if !ok {
		p.fail(fmt.Sprintf("Could not parse %q as number.", p.curToken.Lexeme))
	}
	return &ast.Literal{Token: p.curToken, Value: &object.Number{Value: value}}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.Literal{Token: p.curToken, Value: &object.String{Value: value}}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Literal{Token: p.curToken, Value: object.NativeBoolToBooleanObject(p.curTokenIs(token.TRUE))}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.Literal{Token: p.curToken, Value: object.NIL}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.Grouping{Token: p.curToken}

	p.nextToken()
	group.Expression = p.parseExpression(LOWEST)

	p.expectPeek(token.RPAREN, "Expect ')' after expression.")
	return group
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.Unary{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.Binary{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expression := &ast.Logical{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

// parseAssignmentExpression is right-associative. Only a variable may be
// assigned to; any other target is reported but parsing carries on.
func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	equals := p.curToken

	p.nextToken()
	value := p.parseExpression(ASSIGNMENT - 1)

	if variable, ok := left.(*ast.Variable); ok {
		return &ast.Assign{Token: variable.Token, Name: variable.Name, Value: value}
	}

	p.addError(equals, "Invalid assignment target.")
	return left
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	arguments := []ast.Expression{}

	if !p.peekTokenIs(token.RPAREN) {
		for {
			if len(arguments) >= MaxArgs {
				p.addError(p.peekToken, fmt.Sprintf("Can't have more than %d arguments.", MaxArgs))
			}
			p.nextToken()
			arguments = append(arguments, p.parseExpression(LOWEST))

			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken() // Consume comma
		}
	}

	p.expectPeek(token.RPAREN, "Expect ')' after arguments.")
	return &ast.Call{Token: p.curToken, Callee: callee, Arguments: arguments}
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
