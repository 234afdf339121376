package ast

import (
	"lox/internal/object"
	"lox/internal/token"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) String() string { return Sprint(p) }

// Expressions

type Literal struct {
	Token token.Token // the literal token, or the `for` keyword for an omitted loop condition
	Value object.Object
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }
func (l *Literal) String() string       { return Sprint(l) }

type Grouping struct {
	Token      token.Token // the ( token
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) String() string       { return Sprint(g) }

type Unary struct {
	Token    token.Token // the operator token, e.g. ! or -
	Operator string
	Right    Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Lexeme }
func (u *Unary) String() string       { return Sprint(u) }

type Binary struct {
	Token    token.Token // the operator token, e.g. +
	Operator string
	Left     Expression
	Right    Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Lexeme }
func (b *Binary) String() string       { return Sprint(b) }

// Logical is a short-circuiting `and` / `or`.
type Logical struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (l *Logical) expressionNode()      {}
func (l *Logical) TokenLiteral() string { return l.Token.Lexeme }
func (l *Logical) String() string       { return Sprint(l) }

type Variable struct {
	Token token.Token // the identifier token
	Name  string
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Lexeme }
func (v *Variable) String() string       { return Sprint(v) }

type Assign struct {
	Token token.Token // the identifier token being assigned
	Name  string
	Value Expression
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Token.Lexeme }
func (a *Assign) String() string       { return Sprint(a) }

type Call struct {
	Token     token.Token // the closing ) token, used to locate errors
	Callee    Expression
	Arguments []Expression
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Token.Lexeme }
func (c *Call) String() string       { return Sprint(c) }

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string       { return Sprint(es) }

type PrintStatement struct {
	Token      token.Token // the 'print' token
	Expression Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string       { return Sprint(ps) }

type VarStatement struct {
	Token       token.Token // the 'var' token
	Name        token.Token
	Initializer Expression // nil when the source has no initializer
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) String() string       { return Sprint(vs) }

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string       { return Sprint(bs) }

type IfStatement struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil when there is no else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string       { return Sprint(is) }

// WhileStatement also represents desugared `for` loops.
type WhileStatement struct {
	Token     token.Token // the 'while' or 'for' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string       { return Sprint(ws) }

type FunctionStatement struct {
	Token      token.Token // the 'fun' token
	Name       token.Token
	Parameters []token.Token
	Body       []Statement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) String() string       { return Sprint(fs) }

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare `return;`
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) String() string       { return Sprint(rs) }
