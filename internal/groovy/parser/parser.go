// Package parser implements the compiler front-end adapter: it parses a
// Groovy source unit to the canonicalization phase needed for symbol
// resolution (classes, methods, fields, imports, and a pragmatic subset of
// statement/expression forms), without producing object code.
//
// Syntax errors never abort parsing: whatever AST fragment was usable is
// still returned, alongside diagnostics. Source is always treated as
// UTF-8 text.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/lexer"
)

// Result is the output of parsing one source unit.
type Result struct {
	Module      *ast.Module // non-nil whenever any usable AST fragment exists
	Diagnostics []diag.Diagnostic
}

// Parse parses src (the content of the file identified by uri) to the
// canonicalization phase.
func Parse(uri, src string) Result {
	p := &parser{
		uri: uri,
		lex: lexer.New(src),
	}
	p.advance()
	mod := p.parseModule()
	return Result{Module: mod, Diagnostics: p.diagnostics}
}

type parser struct {
	uri         string
	lex         *lexer.Lexer
	tok         lexer.Token
	pendingDoc  []string
	diagnostics []diag.Diagnostic
}

func (p *parser) advance() {
	for {
		p.tok = p.lex.Next()
		if p.tok.Kind == lexer.DocComment {
			if lines, ok := p.tok.Literal.([]string); ok {
				p.pendingDoc = lines
			}
			continue
		}
		return
	}
}

func (p *parser) takeDoc() []string {
	d := p.pendingDoc
	p.pendingDoc = nil
	return d
}

func (p *parser) at(kind lexer.Kind, text string) bool {
	return p.tok.Kind == kind && p.tok.Text == text
}

func (p *parser) atKeyword(kw string) bool { return p.at(lexer.Keyword, kw) }
func (p *parser) atPunct(s string) bool    { return p.at(lexer.Punct, s) }
func (p *parser) atOperator(s string) bool { return p.at(lexer.Operator, s) }

func (p *parser) errorf(tok lexer.Token, format string, args ...interface{}) {
	end := tok.EndLine
	endCol := tok.EndCol
	if end == 0 {
		end = tok.Line
		endCol = tok.Col + 1
	}
	p.diagnostics = append(p.diagnostics, diag.Diagnostic{
		Range: diag.Range{
			Start: diag.Position{Line: tok.Line - 1, Character: tok.Col - 1},
			End:   diag.Position{Line: end - 1, Character: endCol - 1},
		},
		Severity: diag.Error,
		Message:  fmt.Sprintf(format, args...),
		Source:   "groovyls",
	})
}

// synchronize skips tokens until a likely statement/declaration boundary,
// so one syntax error does not cascade into spurious downstream ones.
func (p *parser) synchronize() {
	for p.tok.Kind != lexer.EOF {
		if p.atPunct(";") || p.atPunct("}") {
			p.advance()
			return
		}
		if p.atKeyword("class") || p.atKeyword("def") || p.atKeyword("import") {
			return
		}
		p.advance()
	}
}

func rangeFromTokens(start, end lexer.Token) ast.Range {
	return ast.NewRange(start.Line, start.Col, end.EndLine, end.EndCol)
}

func (p *parser) rangeSince(start lexer.Token) ast.Range {
	return ast.NewRange(start.Line, start.Col, p.tok.Line, p.tok.Col)
}

func (p *parser) parseModule() *ast.Module {
	start := p.tok
	mod := &ast.Module{URI: p.uri}

	if p.atKeyword("package") {
		p.advance()
		mod.PackageName = p.parseQualifiedName()
		p.expectStatementEnd()
	}

	for p.atKeyword("import") {
		if imp := p.parseImport(); imp != nil {
			mod.Imports = append(mod.Imports, imp)
		}
	}

	for p.tok.Kind != lexer.EOF {
		if p.atKeyword("class") || p.atKeyword("interface") || p.atKeyword("trait") || p.atKeyword("enum") {
			if cls := p.parseClass(); cls != nil {
				mod.Classes = append(mod.Classes, cls)
			}
			continue
		}
		before := p.tok
		stmt := p.parseStatement()
		if stmt != nil {
			mod.Statements = append(mod.Statements, stmt)
		}
		if p.tok == before {
			// No progress was made; avoid an infinite loop on unparseable
			// input by forcing an advance.
			p.errorf(p.tok, "unexpected token %s", p.tok.Text)
			p.advance()
		}
	}

	mod.R = p.rangeSince(start)
	return mod
}

func (p *parser) parseQualifiedName() string {
	var parts []string
	if p.tok.Kind == lexer.Ident || p.tok.Kind == lexer.Keyword {
		parts = append(parts, p.tok.Text)
		p.advance()
	}
	for p.atPunct(".") {
		p.advance()
		if p.atOperator("*") {
			parts = append(parts, "*")
			p.advance()
			break
		}
		if p.tok.Kind == lexer.Ident || p.tok.Kind == lexer.Keyword {
			parts = append(parts, p.tok.Text)
			p.advance()
		}
	}
	return strings.Join(parts, ".")
}

func (p *parser) expectStatementEnd() {
	if p.atPunct(";") {
		p.advance()
	}
}

func (p *parser) parseImport() *ast.ImportNode {
	start := p.tok
	p.advance() // 'import'
	static := false
	if p.atKeyword("static") {
		static = true
		p.advance()
	}
	name := p.parseQualifiedName()
	onDemand := strings.HasSuffix(name, ".*")
	if onDemand {
		name = strings.TrimSuffix(name, ".*")
	}
	alias := ""
	if p.atKeyword("as") {
		p.advance()
		alias = p.tok.Text
		p.advance()
	}
	p.expectStatementEnd()
	return &ast.ImportNode{
		NodeBase:  ast.NodeBase{R: p.rangeSince(start)},
		ClassName: name,
		Alias:     alias,
		Static:    static,
		OnDemand:  onDemand,
	}
}

func (p *parser) parseClass() *ast.ClassNode {
	start := p.tok
	p.advance() // class/interface/trait/enum keyword
	cls := &ast.ClassNode{}
	if p.tok.Kind == lexer.Ident {
		cls.NameRange = ast.NewRange(p.tok.Line, p.tok.Col, p.tok.EndLine, p.tok.EndCol)
		cls.Name = p.tok.Text
		p.advance()
	} else {
		p.errorf(p.tok, "expected class name")
	}

	if p.atKeyword("extends") {
		p.advance()
		cls.SuperClass = p.parseQualifiedName()
	}
	if p.atKeyword("implements") {
		p.advance()
		cls.Interfaces = append(cls.Interfaces, p.parseQualifiedName())
		for p.atPunct(",") {
			p.advance()
			cls.Interfaces = append(cls.Interfaces, p.parseQualifiedName())
		}
	}

	if !p.atPunct("{") {
		p.errorf(p.tok, "expected '{' to start class body")
		cls.R = p.rangeSince(start)
		return cls
	}
	p.advance()

	for !p.atPunct("}") && p.tok.Kind != lexer.EOF {
		before := p.tok
		p.parseMember(cls)
		if p.tok == before {
			// The member parse stopped at a declaration keyword without
			// consuming anything; end the class body here.
			break
		}
	}
	if p.atPunct("}") {
		p.advance()
	} else {
		p.errorf(p.tok, "expected '}' to close class body")
	}

	cls.R = p.rangeSince(start)
	return cls
}

// parseMember parses one field, property, or method declaration inside a
// class body, appending it to cls.
func (p *parser) parseMember(cls *ast.ClassNode) {
	start := p.tok
	doc := p.takeDoc()
	vis, visSet := p.parseVisibility()
	static := false
	for p.atKeyword("static") || p.atKeyword("final") {
		if p.atKeyword("static") {
			static = true
		}
		p.advance()
	}

	typeName := ""
	if p.atKeyword("def") {
		p.advance()
	} else if p.atKeyword("void") {
		typeName = "void"
		p.advance()
	} else if p.tok.Kind == lexer.Ident && p.looksLikeTypeThenName() {
		typeName = p.parseQualifiedName()
		for p.atPunct("[") && p.peekPunct("]") {
			p.advance()
			p.advance()
			typeName += "[]"
		}
	}

	if p.tok.Kind != lexer.Ident {
		p.errorf(p.tok, "expected member name")
		p.synchronize()
		return
	}
	nameTok := p.tok
	name := p.tok.Text
	p.advance()

	if p.atPunct("(") {
		m := p.parseMethodTail(start, nameTok, name, typeName, static, vis, doc)
		m.Owner = cls
		cls.Methods = append(cls.Methods, m)
		return
	}

	var initial ast.Node
	if p.atOperator("=") {
		p.advance()
		initial = p.parseExpression()
	}
	p.expectStatementEnd()

	nameRange := ast.NewRange(nameTok.Line, nameTok.Col, nameTok.EndLine, nameTok.EndCol)
	if visSet {
		cls.Fields = append(cls.Fields, &ast.FieldNode{
			NodeBase:   ast.NodeBase{R: p.rangeSince(start)},
			Name:       name,
			Owner:      cls,
			Type:       typeName,
			Visibility: vis,
			Static:     static,
			Initial:    initial,
			NameRange:  nameRange,
			DocComment: doc,
		})
		return
	}
	cls.Properties = append(cls.Properties, &ast.PropertyNode{
		NodeBase:   ast.NodeBase{R: p.rangeSince(start)},
		Name:       name,
		Owner:      cls,
		Type:       typeName,
		Static:     static,
		Initial:    initial,
		NameRange:  nameRange,
		DocComment: doc,
	})
}

func (p *parser) parseMethodTail(start, nameTok lexer.Token, name, returnType string, static bool, vis ast.Visibility, doc []string) *ast.MethodNode {
	p.advance() // '('
	var params []*ast.ParameterNode
	for !p.atPunct(")") && p.tok.Kind != lexer.EOF {
		params = append(params, p.parseParameter())
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(")") {
		p.advance()
	} else {
		p.errorf(p.tok, "expected ')' to close parameter list")
	}

	var body *ast.Block
	if p.atPunct("{") {
		body = p.parseBlock()
	} else {
		p.expectStatementEnd()
	}

	return &ast.MethodNode{
		NodeBase:   ast.NodeBase{R: p.rangeSince(start)},
		Name:       name,
		ReturnType: returnType,
		Parameters: params,
		Body:       body,
		Visibility: vis,
		Static:     static,
		NameRange:  ast.NewRange(nameTok.Line, nameTok.Col, nameTok.EndLine, nameTok.EndCol),
		DocComment: doc,
	}
}

func (p *parser) parseParameter() *ast.ParameterNode {
	start := p.tok
	typeName := ""
	if p.tok.Kind == lexer.Ident && p.looksLikeTypeThenName() {
		typeName = p.parseQualifiedName()
	} else if p.atKeyword("def") {
		p.advance()
	}
	name := ""
	if p.tok.Kind == lexer.Ident {
		name = p.tok.Text
		p.advance()
	}
	var def ast.Node
	if p.atOperator("=") {
		p.advance()
		def = p.parseExpression()
	}
	return &ast.ParameterNode{
		NodeBase: ast.NodeBase{R: p.rangeSince(start)},
		Name:     name,
		Type:     typeName,
		Default:  def,
	}
}

// looksLikeTypeThenName reports whether the current identifier is likely a
// type name followed by another identifier (a typed declaration) rather
// than a bare name use. It peeks one token ahead without consuming it: a
// following identifier or '.' counts as a typed declaration.
func (p *parser) looksLikeTypeThenName() bool {
	if p.tok.Kind != lexer.Ident {
		return false
	}
	next := p.lex.Peek()
	if next.Kind == lexer.Ident {
		return true
	}
	if next.Kind == lexer.Punct && next.Text == "." {
		return true
	}
	return false
}

func (p *parser) peekPunct(text string) bool {
	n := p.lex.Peek()
	return n.Kind == lexer.Punct && n.Text == text
}

func (p *parser) parseVisibility() (ast.Visibility, bool) {
	switch {
	case p.atKeyword("public"):
		p.advance()
		return ast.VisibilityPublic, true
	case p.atKeyword("protected"):
		p.advance()
		return ast.VisibilityProtected, true
	case p.atKeyword("private"):
		p.advance()
		return ast.VisibilityPrivate, true
	default:
		return ast.VisibilityPackagePrivate, false
	}
}

func (p *parser) parseBlock() *ast.Block {
	start := p.tok
	p.advance() // '{'
	b := &ast.Block{}
	for !p.atPunct("}") && p.tok.Kind != lexer.EOF {
		before := p.tok
		stmt := p.parseStatement()
		if stmt != nil {
			b.Statements = append(b.Statements, stmt)
		}
		if p.tok == before {
			p.errorf(p.tok, "unexpected token %s", p.tok.Text)
			p.advance()
		}
	}
	if p.atPunct("}") {
		p.advance()
	} else {
		p.errorf(p.tok, "expected '}' to close block")
	}
	b.R = p.rangeSince(start)
	return b
}

func (p *parser) parseStatement() ast.Node {
	switch {
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atKeyword("try"):
		return p.parseTry()
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atPunct("{"):
		return p.parseBlock()
	case p.atPunct(";"):
		p.advance()
		return nil
	case p.atKeyword("def"):
		return p.parseDeclarationOrExpr()
	default:
		return p.parseDeclarationOrExpr()
	}
}

func (p *parser) parseIf() ast.Node {
	start := p.tok
	p.advance()
	p.expectPunct("(")
	cond := p.parseExpression()
	p.expectPunct(")")
	then := p.parseBlockOrStatementAsBlock()
	var els ast.Node
	if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			els = p.parseIf()
		} else {
			els = p.parseBlockOrStatementAsBlock()
		}
	}
	return &ast.IfStatement{
		NodeBase:  ast.NodeBase{R: p.rangeSince(start)},
		Condition: cond,
		Then:      then,
		Else:      els,
	}
}

func (p *parser) parseBlockOrStatementAsBlock() *ast.Block {
	if p.atPunct("{") {
		return p.parseBlock()
	}
	start := p.tok
	stmt := p.parseStatement()
	b := &ast.Block{NodeBase: ast.NodeBase{R: p.rangeSince(start)}}
	if stmt != nil {
		b.Statements = []ast.Node{stmt}
	}
	return b
}

func (p *parser) parseFor() ast.Node {
	start := p.tok
	p.advance()
	p.expectPunct("(")
	var variable *ast.ParameterNode
	var iterable ast.Node
	// `for (Type x : iterable)` / `for (x in iterable)`
	saveLex := p.lex.Save()
	saveTok := p.tok
	typeName := ""
	if p.tok.Kind == lexer.Ident && p.looksLikeTypeThenName() {
		typeName = p.parseQualifiedName()
	} else if p.atKeyword("def") {
		p.advance()
	}
	if p.tok.Kind == lexer.Ident {
		nameTok := p.tok
		name := p.tok.Text
		p.advance()
		if p.atKeyword("in") || p.atPunct(":") {
			p.advance()
			iterable = p.parseExpression()
			variable = &ast.ParameterNode{
				NodeBase: ast.NodeBase{R: ast.NewRange(nameTok.Line, nameTok.Col, nameTok.EndLine, nameTok.EndCol)},
				Name:     name,
				Type:     typeName,
			}
		} else {
			p.lex.Restore(saveLex)
			p.tok = saveTok
			p.skipClassicForHeader()
		}
	} else {
		p.lex.Restore(saveLex)
		p.tok = saveTok
		p.skipClassicForHeader()
	}
	p.expectPunct(")")
	body := p.parseBlockOrStatementAsBlock()
	return &ast.ForStatement{
		NodeBase: ast.NodeBase{R: p.rangeSince(start)},
		Variable: variable,
		Iterable: iterable,
		Body:     body,
	}
}

// skipClassicForHeader consumes a C-style `init; cond; update` for-header
// without modeling its pieces individually; the pragmatic subset does not
// need classic-for variable declarations resolved.
func (p *parser) skipClassicForHeader() {
	depth := 0
	for p.tok.Kind != lexer.EOF {
		if p.atPunct("(") {
			depth++
		}
		if p.atPunct(")") {
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

func (p *parser) parseWhile() ast.Node {
	start := p.tok
	p.advance()
	p.expectPunct("(")
	cond := p.parseExpression()
	p.expectPunct(")")
	body := p.parseBlockOrStatementAsBlock()
	return &ast.WhileStatement{
		NodeBase:  ast.NodeBase{R: p.rangeSince(start)},
		Condition: cond,
		Body:      body,
	}
}

func (p *parser) parseTry() ast.Node {
	start := p.tok
	p.advance()
	body := p.parseBlock()
	var catches []*ast.CatchClause
	for p.atKeyword("catch") {
		cstart := p.tok
		p.advance()
		p.expectPunct("(")
		param := p.parseParameter()
		p.expectPunct(")")
		cbody := p.parseBlock()
		catches = append(catches, &ast.CatchClause{
			NodeBase:  ast.NodeBase{R: p.rangeSince(cstart)},
			Parameter: param,
			Body:      cbody,
		})
	}
	var fin *ast.Block
	if p.atKeyword("finally") {
		p.advance()
		fin = p.parseBlock()
	}
	return &ast.TryStatement{
		NodeBase: ast.NodeBase{R: p.rangeSince(start)},
		Body:     body,
		Catches:  catches,
		Finally:  fin,
	}
}

func (p *parser) parseReturn() ast.Node {
	start := p.tok
	p.advance()
	var val ast.Node
	if !p.atPunct(";") && !p.atPunct("}") && p.tok.Kind != lexer.EOF {
		val = p.parseExpression()
	}
	p.expectStatementEnd()
	return &ast.ReturnStatement{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: val}
}

// parseDeclarationOrExpr handles `def x = ...`, `Type x = ...`, and plain
// expression statements, since Groovy's grammar makes these ambiguous
// without full type resolution; we disambiguate heuristically.
func (p *parser) parseDeclarationOrExpr() ast.Node {
	start := p.tok
	isDef := false
	typeName := ""
	if p.atKeyword("def") {
		isDef = true
		p.advance()
	} else if p.tok.Kind == lexer.Ident && p.looksLikeTypeThenName() {
		typeName = p.parseQualifiedName()
	}

	if isDef || typeName != "" {
		if p.tok.Kind != lexer.Ident {
			p.errorf(p.tok, "expected variable name")
			p.synchronize()
			return nil
		}
		nameTok := p.tok
		name := p.tok.Text
		p.advance()
		var rhs ast.Node
		if p.atOperator("=") {
			p.advance()
			rhs = p.parseExpression()
		}
		p.expectStatementEnd()
		v := &ast.VariableExpression{
			NodeBase: ast.NodeBase{R: ast.NewRange(nameTok.Line, nameTok.Col, nameTok.EndLine, nameTok.EndCol)},
			Name:     name,
		}
		decl := &ast.DeclarationExpression{
			NodeBase: ast.NodeBase{R: p.rangeSince(start)},
			Variable: v,
			Type:     typeName,
			RHS:      rhs,
		}
		v.Declaration = decl
		return &ast.ExpressionStatement{NodeBase: decl.R, Expression: decl}
	}

	expr := p.parseExpression()
	endTok := p.tok
	p.expectStatementEnd()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{NodeBase: ast.NodeBase{R: rangeFromTokens(start, endTok)}, Expression: expr}
}

func (p *parser) expectPunct(text string) {
	if p.atPunct(text) {
		p.advance()
		return
	}
	p.errorf(p.tok, "expected '%s'", text)
}

// --- expressions, precedence-climbing ---

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true}
var binaryPrecedence = []map[string]bool{
	{"||": true},
	{"&&": true},
	{"==": true, "!=": true, "<=>": true, "=~": true, "==~": true},
	{"<": true, ">": true, "<=": true, ">=": true, "instanceof": true, "in": true},
	{"..": true},
	{"+": true, "-": true},
	{"*": true, "/": true, "%": true},
}

func (p *parser) parseExpression() ast.Node {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() ast.Node {
	start := p.tok
	lhs := p.parseBinary(0)
	if p.tok.Kind == lexer.Operator && assignOps[p.tok.Text] {
		op := p.tok.Text
		p.advance()
		rhs := p.parseAssignment()
		return &ast.BinaryExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, LHS: lhs, RHS: rhs, Operator: op}
	}
	return lhs
}

func (p *parser) parseBinary(level int) ast.Node {
	if level >= len(binaryPrecedence) {
		return p.parseUnary()
	}
	start := p.tok
	lhs := p.parseBinary(level + 1)
	for {
		op := p.tok.Text
		isOp := (p.tok.Kind == lexer.Operator || p.tok.Kind == lexer.Keyword) && binaryPrecedence[level][op]
		if !isOp {
			return lhs
		}
		p.advance()
		rhs := p.parseBinary(level + 1)
		lhs = &ast.BinaryExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, LHS: lhs, RHS: rhs, Operator: op}
	}
}

func (p *parser) parseUnary() ast.Node {
	if p.atOperator("!") || p.atOperator("-") || p.atOperator("+") || p.atOperator("++") || p.atOperator("--") {
		start := p.tok
		op := p.tok.Text
		p.advance()
		operand := p.parseUnary()
		return &ast.BinaryExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, LHS: operand, Operator: "unary" + op}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(expr ast.Node) ast.Node {
	for {
		switch {
		case p.atPunct("."):
			p.advance()
			if p.tok.Kind != lexer.Ident && p.tok.Kind != lexer.Keyword {
				p.errorf(p.tok, "expected member name after '.'")
				return expr
			}
			name := p.tok.Text
			memberTok := p.tok
			p.advance()
			if p.atPunct("(") {
				args := p.parseArguments()
				expr = &ast.MethodCallExpression{
					NodeBase:  ast.NodeBase{R: rangeFromTokens(tokenFromRange(expr), p.tok)},
					Receiver:  expr,
					Name:      name,
					Arguments: args,
				}
				continue
			}
			expr = &ast.PropertyExpression{
				NodeBase: ast.NodeBase{R: ast.NewRange(startLine(expr), startCol(expr), memberTok.EndLine, memberTok.EndCol)},
				Object:   expr,
				Name:     name,
			}
		case p.atPunct("("):
			if call, ok := expr.(*ast.PropertyExpression); ok {
				args := p.parseArguments()
				expr = &ast.MethodCallExpression{
					NodeBase:  ast.NodeBase{R: ast.NewRange(startLine(expr), startCol(expr), p.tok.Line, p.tok.Col)},
					Receiver:  call.Object,
					Name:      call.Name,
					Arguments: args,
				}
				continue
			}
			return expr
		case p.atOperator("++") || p.atOperator("--"):
			p.advance()
			continue
		default:
			return expr
		}
	}
}

func tokenFromRange(n ast.Node) lexer.Token {
	r := n.Range()
	return lexer.Token{Line: r.Start.Line, Col: r.Start.Column}
}

func startLine(n ast.Node) int { return n.Range().Start.Line }
func startCol(n ast.Node) int  { return n.Range().Start.Column }

func (p *parser) parseArguments() []ast.Node {
	p.advance() // '('
	var args []ast.Node
	for !p.atPunct(")") && p.tok.Kind != lexer.EOF {
		if p.tok.Kind == lexer.Ident && p.peekPunctOperator(":") {
			// Named argument `name: value` — modeled as a binary ':' for
			// simplicity; callers interested in map-literal/named-arg
			// semantics inspect Operator == ":".
			nameTok := p.tok
			name := p.tok.Text
			p.advance()
			p.advance() // ':'
			val := p.parseExpression()
			args = append(args, &ast.BinaryExpression{
				NodeBase: ast.NodeBase{R: ast.NewRange(nameTok.Line, nameTok.Col, p.tok.Line, p.tok.Col)},
				LHS: &ast.ConstantExpression{NodeBase: ast.NodeBase{R: ast.NewRange(nameTok.Line, nameTok.Col, nameTok.EndLine, nameTok.EndCol)}, Value: name, Type: "String"},
				RHS: val, Operator: ":",
			})
		} else {
			args = append(args, p.parseExpression())
		}
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if p.atPunct(")") {
		p.advance()
	} else {
		p.errorf(p.tok, "expected ')' to close argument list")
	}
	return args
}

func (p *parser) peekPunctOperator(text string) bool {
	n := p.lex.Peek()
	return (n.Kind == lexer.Punct || n.Kind == lexer.Operator) && n.Text == text
}

func (p *parser) parsePrimary() ast.Node {
	start := p.tok
	switch {
	case p.tok.Kind == lexer.Number:
		text := p.tok.Text
		p.advance()
		return &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: numericLiteral(text), Type: numericType(text)}

	case p.tok.Kind == lexer.String:
		raw := p.tok.Text
		p.advance()
		spans := lexer.ScanInterpolations(raw)
		if len(spans) == 0 {
			return &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: raw, Type: "String"}
		}
		return &ast.GStringExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Values: p.parseGStringParts(raw, spans, start)}

	case p.atKeyword("true"):
		p.advance()
		return &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: true, Type: "boolean"}
	case p.atKeyword("false"):
		p.advance()
		return &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: false, Type: "boolean"}
	case p.atKeyword("null"):
		p.advance()
		return &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: nil, Type: "null"}

	case p.atKeyword("new"):
		p.advance()
		typeStart := p.tok
		typeName := p.parseQualifiedName()
		typeRef := &ast.ClassExpression{NodeBase: ast.NodeBase{R: p.rangeSince(typeStart)}, Name: typeName}
		var args []ast.Node
		if p.atPunct("(") {
			args = p.parseArguments()
		}
		return &ast.ConstructorCallExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Type: typeName, TypeRef: typeRef, Arguments: args}

	case p.atPunct("("):
		p.advance()
		inner := p.parseExpression()
		p.expectPunct(")")
		return inner

	case p.atPunct("{"):
		return p.parseClosure()

	case p.tok.Kind == lexer.Ident:
		name := p.tok.Text
		isUpper := len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
		p.advance()
		if p.atPunct("(") {
			args := p.parseArguments()
			return &ast.MethodCallExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Name: name, Arguments: args}
		}
		if isUpper {
			return &ast.ClassExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Name: name}
		}
		return &ast.VariableExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Name: name}

	case p.tok.Kind == lexer.Keyword && (p.tok.Text == "this" || p.tok.Text == "super"):
		name := p.tok.Text
		p.advance()
		return &ast.VariableExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Name: name}

	default:
		p.errorf(p.tok, "unexpected token in expression: %s", p.tok.Text)
		inv := &ast.Invalid{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Reason: "unexpected token"}
		p.advance()
		return inv
	}
}

func (p *parser) parseClosure() ast.Node {
	start := p.tok
	p.advance() // '{'
	var params []*ast.ParameterNode
	saveLex := p.lex.Save()
	saveTok := p.tok
	if looksLikeClosureParams(p) {
		for !p.atOperator("->") && p.tok.Kind != lexer.EOF {
			params = append(params, p.parseParameter())
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
		if p.atOperator("->") {
			p.advance()
		} else {
			p.lex.Restore(saveLex)
			p.tok = saveTok
			params = nil
		}
	}
	body := &ast.Block{}
	for !p.atPunct("}") && p.tok.Kind != lexer.EOF {
		before := p.tok
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
		if p.tok == before {
			p.advance()
		}
	}
	if p.atPunct("}") {
		p.advance()
	}
	body.R = p.rangeSince(start)
	return &ast.ClosureExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Parameters: params, Body: body}
}

func looksLikeClosureParams(p *parser) bool {
	return p.tok.Kind == lexer.Ident || p.atKeyword("def")
}

func (p *parser) parseGStringParts(raw string, spans []lexer.InterpolationSpan, start lexer.Token) []ast.Node {
	var parts []ast.Node
	last := 0
	for _, sp := range spans {
		if sp.Start > last {
			lit := raw[last:sp.Start]
			parts = append(parts, &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: lit, Type: "String"})
		}
		sub := Parse(p.uri, sp.Expr)
		p.diagnostics = append(p.diagnostics, sub.Diagnostics...)
		if sub.Module != nil && len(sub.Module.Statements) > 0 {
			if es, ok := sub.Module.Statements[0].(*ast.ExpressionStatement); ok {
				parts = append(parts, es.Expression)
			}
		} else {
			parts = append(parts, &ast.VariableExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Name: sp.Expr})
		}
		last = sp.End
	}
	if last < len(raw) {
		parts = append(parts, &ast.ConstantExpression{NodeBase: ast.NodeBase{R: p.rangeSince(start)}, Value: raw[last:], Type: "String"})
	}
	return parts
}

func numericLiteral(text string) interface{} {
	clean := strings.TrimRight(text, "LlFfDdGgIi")
	if strings.Contains(clean, ".") {
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return f
		}
	}
	if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return i
	}
	return text
}

func numericType(text string) string {
	if strings.Contains(text, ".") {
		return "double"
	}
	return "int"
}
