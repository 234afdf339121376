package ast

import (
	"reflect"
	"strconv"
	"strings"

	"lox/internal/object"
)

// Sprint renders a node as a parenthesized prefix expression, e.g.
// `-123 * (45.67)` becomes "(* (- 123) (group 45.67))".
func Sprint(node Node) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	switch n := node.(type) {
	case *Program:
		parts := make([]string, len(n.Statements))
		for i, s := range n.Statements {
			parts[i] = Sprint(s)
		}
		return strings.Join(parts, "\n")

	case *Literal:
		if s, ok := n.Value.(*object.String); ok {
			return strconv.Quote(s.Value)
		}
		if n.Value == nil {
			return "nil"
		}
		return n.Value.Inspect()
	case *Grouping:
		return parenthesize("group", n.Expression)
	case *Unary:
		return parenthesize(n.Operator, n.Right)
	case *Binary:
		return parenthesize(n.Operator, n.Left, n.Right)
	case *Logical:
		return parenthesize(n.Operator, n.Left, n.Right)
	case *Variable:
		return n.Name
	case *Assign:
		return "(= " + n.Name + " " + Sprint(n.Value) + ")"
	case *Call:
		return parenthesize("call", append([]Node{n.Callee}, exprNodes(n.Arguments)...)...)

	case *ExpressionStatement:
		return parenthesize(";", n.Expression)
	case *PrintStatement:
		return parenthesize("print", n.Expression)
	case *VarStatement:
		return "(var " + n.Name.Lexeme + " " + Sprint(n.Initializer) + ")"
	case *BlockStatement:
		return parenthesize("block", stmtNodes(n.Statements)...)
	case *IfStatement:
		if n.Alternative == nil {
			return parenthesize("if", n.Condition, n.Consequence)
		}
		return parenthesize("if-else", n.Condition, n.Consequence, n.Alternative)
	case *WhileStatement:
		return parenthesize("while", n.Condition, n.Body)
	case *FunctionStatement:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Lexeme
		}
		var out strings.Builder
		out.WriteString("(fun " + n.Name.Lexeme + " (" + strings.Join(params, " ") + ")")
		for _, s := range n.Body {
			out.WriteString(" " + Sprint(s))
		}
		out.WriteString(")")
		return out.String()
	case *ReturnStatement:
		if n.ReturnValue == nil {
			return "(return)"
		}
		return parenthesize("return", n.ReturnValue)
	}
	return "?"
}

func parenthesize(name string, nodes ...Node) string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(name)
	for _, n := range nodes {
		out.WriteString(" ")
		out.WriteString(Sprint(n))
	}
	out.WriteString(")")
	return out.String()
}

func exprNodes(exprs []Expression) []Node {
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e
	}
	return nodes
}

func stmtNodes(stmts []Statement) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}
