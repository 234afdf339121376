package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"lox/internal/ast"
	"lox/internal/object"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
// The result feeds both the JSON and the YAML renderers.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	case *ast.VarStatement:
		return map[string]interface{}{
			"type":        "VarStatement",
			"line":        n.Token.Line,
			"name":        n.Name.Lexeme,
			"initializer": WalkAST(n.Initializer),
		}

	case *ast.FunctionStatement:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Lexeme
		}
		return map[string]interface{}{
			"type":       "FunctionStatement",
			"line":       n.Token.Line,
			"name":       n.Name.Lexeme,
			"parameters": params,
			"body":       walkStatements(n.Body),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"type":        "ReturnStatement",
			"line":        n.Token.Line,
			"returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"line":       n.Token.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.PrintStatement:
		return map[string]interface{}{
			"type":       "PrintStatement",
			"line":       n.Token.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"type":       "BlockStatement",
			"line":       n.Token.Line,
			"statements": walkStatements(n.Statements),
		}

	case *ast.IfStatement:
		return map[string]interface{}{
			"type":        "IfStatement",
			"line":        n.Token.Line,
			"condition":   WalkAST(n.Condition),
			"consequence": WalkAST(n.Consequence),
			"alternative": WalkAST(n.Alternative),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"type":      "WhileStatement",
			"line":      n.Token.Line,
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
		}

	case *ast.Literal:
		return map[string]interface{}{
			"type":  "Literal",
			"line":  n.Token.Line,
			"value": literalValue(n.Value),
		}

	case *ast.Variable:
		return map[string]interface{}{
			"type": "Variable",
			"line": n.Token.Line,
			"name": n.Name,
		}

	case *ast.Assign:
		return map[string]interface{}{
			"type":  "Assign",
			"line":  n.Token.Line,
			"name":  n.Name,
			"value": WalkAST(n.Value),
		}

	case *ast.Grouping:
		return map[string]interface{}{
			"type":       "Grouping",
			"line":       n.Token.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.Unary:
		return map[string]interface{}{
			"type":     "Unary",
			"line":     n.Token.Line,
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.Binary:
		return map[string]interface{}{
			"type":     "Binary",
			"line":     n.Token.Line,
			"left":     WalkAST(n.Left),
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.Logical:
		return map[string]interface{}{
			"type":     "Logical",
			"line":     n.Token.Line,
			"left":     WalkAST(n.Left),
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.Call:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"type":      "Call",
			"line":      n.Token.Line,
			"callee":    WalkAST(n.Callee),
			"arguments": args,
		}

	default:
		return map[string]interface{}{
			"type": fmt.Sprintf("Unknown(%T)", n),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = WalkAST(s)
	}
	return out
}

func literalValue(obj object.Object) interface{} {
	switch v := obj.(type) {
	case *object.Number:
		return v.Value
	case *object.String:
		return v.Value
	case *object.Boolean:
		return v.Value
	default:
		return nil
	}
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)

	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}

func RenderASTAsYAML(node ast.Node) (string, error) {
	astMap := WalkAST(node)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %v", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to close YAML encoder: %v", err)
	}
	return buf.String(), nil
}
