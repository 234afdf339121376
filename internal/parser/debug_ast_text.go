package parser

import (
	"fmt"
	"reflect"
	"strings"

	"lox/internal/ast"
	"lox/internal/object"
)

// RenderASTAsText produces a human-centric, indented, Lox-like representation of the AST.
// Grouping and precedence are made explicit, and desugared `for` loops show
// up as the blocks and `while` loops they became.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		var sb strings.Builder
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("\n")
			}
			// Root level statements start at indent 0
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.VarStatement:
		if n.Initializer == nil {
			return fmt.Sprintf("%svar %s;", sp, n.Name.Lexeme)
		}
		return fmt.Sprintf("%svar %s = %s;", sp, n.Name.Lexeme, RenderASTAsText(n.Initializer, 0))

	case *ast.FunctionStatement:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Lexeme
		}
		return fmt.Sprintf("%sfun %s(%s) %s", sp, n.Name.Lexeme, strings.Join(params, ", "),
			renderBody(n.Body, indent))

	case *ast.ReturnStatement:
		if n.ReturnValue == nil {
			return sp + "return;"
		}
		return fmt.Sprintf("%sreturn %s;", sp, RenderASTAsText(n.ReturnValue, 0))

	case *ast.PrintStatement:
		return fmt.Sprintf("%sprint %s;", sp, RenderASTAsText(n.Expression, 0))

	case *ast.ExpressionStatement:
		// The statement handles the line's starting indentation
		return sp + RenderASTAsText(n.Expression, 0) + ";"

	case *ast.BlockStatement:
		return sp + renderBody(n.Statements, indent)

	case *ast.IfStatement:
		res := fmt.Sprintf("%sif (%s) %s", sp, RenderASTAsText(n.Condition, 0),
			strings.TrimLeft(RenderASTAsText(n.Consequence, indent), " "))
		if n.Alternative != nil {
			res += " else " + strings.TrimLeft(RenderASTAsText(n.Alternative, indent), " ")
		}
		return res

	case *ast.WhileStatement:
		return fmt.Sprintf("%swhile (%s) %s", sp, RenderASTAsText(n.Condition, 0),
			strings.TrimLeft(RenderASTAsText(n.Body, indent), " "))

	case *ast.Call:
		args := []string{}
		for _, a := range n.Arguments {
			args = append(args, RenderASTAsText(a, 0))
		}
		return fmt.Sprintf("%s(%s)", RenderASTAsText(n.Callee, 0), strings.Join(args, ", "))

	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator, RenderASTAsText(n.Right, 0))

	case *ast.Logical:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator, RenderASTAsText(n.Right, 0))

	case *ast.Unary:
		return fmt.Sprintf("(%s%s)", n.Operator, RenderASTAsText(n.Right, 0))

	case *ast.Grouping:
		return fmt.Sprintf("(%s)", RenderASTAsText(n.Expression, 0))

	case *ast.Assign:
		return fmt.Sprintf("%s = %s", n.Name, RenderASTAsText(n.Value, 0))

	case *ast.Variable:
		return n.Name

	case *ast.Literal:
		if s, ok := n.Value.(*object.String); ok {
			return fmt.Sprintf("%q", s.Value)
		}
		if n.Value == nil {
			return "nil"
		}
		return n.Value.Inspect()

	default:
		return fmt.Sprintf("<unknown:%T>", n)
	}
}

func renderBody(stmts []ast.Statement, indent int) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range stmts {
		// Statements inside the block are indented +1
		sb.WriteString(RenderASTAsText(s, indent+1))
		sb.WriteString("\n")
	}
	// The closing brace aligns with the parent's indent
	sb.WriteString(strings.Repeat("  ", indent) + "}")
	return sb.String()
}
