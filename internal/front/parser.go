package front

import (
	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/ast"
)

// Parser turns MiniC source text into an *ast.CompUnit. It has no other
// state, matching the teacher's stateless Parser struct.
type Parser struct{}

// ParseFile parses the MiniC source text in src.
func (p *Parser) ParseFile(src []byte) (*ast.CompUnit, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, errors.Wrap(err, "lex")
	}

	ps := &parseState{toks: toks}

	cu, err := ps.parseCompUnit()
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	return cu, nil
}

type parseState struct {
	toks []token
	i    int
}

func (ps *parseState) cur() token   { return ps.toks[ps.i] }
func (ps *parseState) pos() int     { return ps.cur().pos }
func (ps *parseState) advance()     { ps.i++ }

func (ps *parseState) atPunct(s string) bool {
	t := ps.cur()
	return t.kind == tokPunct && t.text == s
}

func (ps *parseState) atKeyword(s string) bool {
	t := ps.cur()
	return t.kind == tokKeyword && t.text == s
}

func (ps *parseState) expectPunct(s string) error {
	if !ps.atPunct(s) {
		return errAt(ps.pos(), "expected %q, got %q", s, ps.cur().text)
	}

	ps.advance()

	return nil
}

func (ps *parseState) expectIdent() (string, error) {
	t := ps.cur()
	if t.kind != tokIdent {
		return "", errAt(ps.pos(), "expected identifier, got %q", t.text)
	}

	ps.advance()

	return t.text, nil
}

func (ps *parseState) parseCompUnit() (*ast.CompUnit, error) {
	cu := &ast.CompUnit{Base: ast.Base{Pos: ps.pos()}}

	for ps.cur().kind != tokEOF {
		item, err := ps.parseTopLevel()
		if err != nil {
			return nil, err
		}

		cu.Items = append(cu.Items, item)
	}

	return cu, nil
}

// parseTopLevel parses one global VarDecl or FuncDef, disambiguating by
// scanning past the declared name for '(' (a FuncDef) vs anything else
// (a VarDecl), the way a one-token-of-lookahead C-family parser must.
func (ps *parseState) parseTopLevel() (ast.Node, error) {
	pos := ps.pos()

	baseType, err := ps.parseBaseType()
	if err != nil {
		return nil, err
	}

	name, err := ps.expectIdent()
	if err != nil {
		return nil, err
	}

	if ps.atPunct("(") {
		return ps.parseFuncDefRest(pos, baseType, name)
	}

	decl, err := ps.parseVarDeclRest(pos, baseType, name)
	if err != nil {
		return nil, err
	}

	if err := ps.expectPunct(";"); err != nil {
		return nil, err
	}

	return decl, nil
}

func (ps *parseState) parseBaseType() (ast.Type, error) {
	switch {
	case ps.atKeyword("int"):
		ps.advance()
		return ast.Int, nil
	case ps.atKeyword("void"):
		ps.advance()
		return ast.Void, nil
	default:
		return 0, errAt(ps.pos(), "expected a type, got %q", ps.cur().text)
	}
}

// parseVarDeclRest parses the remainder of a VarDecl whose base type and
// first declarator name were already consumed.
func (ps *parseState) parseVarDeclRest(pos int, baseType ast.Type, firstName string) (*ast.VarDecl, error) {
	decl := &ast.VarDecl{Base: ast.Base{Pos: pos}, BaseType: baseType}

	def, err := ps.parseVarDefRest(firstName)
	if err != nil {
		return nil, err
	}

	decl.Defs = append(decl.Defs, def)

	for ps.atPunct(",") {
		ps.advance()

		name, err := ps.expectIdent()
		if err != nil {
			return nil, err
		}

		def, err := ps.parseVarDefRest(name)
		if err != nil {
			return nil, err
		}

		decl.Defs = append(decl.Defs, def)
	}

	return decl, nil
}

func (ps *parseState) parseVarDefRest(name string) (*ast.VarDef, error) {
	def := &ast.VarDef{Base: ast.Base{Pos: ps.pos()}, Name: name}

	var dims []int
	for ps.atPunct("[") {
		ps.advance()

		t := ps.cur()
		if t.kind != tokInt {
			return nil, errAt(ps.pos(), "expected array size, got %q", t.text)
		}
		ps.advance()

		dims = append(dims, t.ival)

		if err := ps.expectPunct("]"); err != nil {
			return nil, err
		}
	}

	if dims != nil {
		def.Array = &ast.ArrayDef{Dims: dims}
	}

	if ps.atPunct("=") {
		ps.advance()

		init, err := ps.parseInitializer()
		if err != nil {
			return nil, err
		}

		def.Init = init
	}

	return def, nil
}

func (ps *parseState) parseInitializer() (ast.Node, error) {
	if ps.atPunct("{") {
		pos := ps.pos()
		ps.advance()

		list := &ast.InitValList{Base: ast.Base{Pos: pos}}

		if !ps.atPunct("}") {
			for {
				elem, err := ps.parseInitializer()
				if err != nil {
					return nil, err
				}

				list.Elems = append(list.Elems, elem)

				if !ps.atPunct(",") {
					break
				}
				ps.advance()
			}
		}

		if err := ps.expectPunct("}"); err != nil {
			return nil, err
		}

		return list, nil
	}

	return ps.parseExpr()
}

func (ps *parseState) parseFuncDefRest(pos int, retType ast.Type, name string) (*ast.FuncDef, error) {
	fn := &ast.FuncDef{Base: ast.Base{Pos: pos}, RetType: retType, Name: name}

	if err := ps.expectPunct("("); err != nil {
		return nil, err
	}

	if !ps.atPunct(")") {
		for {
			param, err := ps.parseParam()
			if err != nil {
				return nil, err
			}

			fn.Params = append(fn.Params, param)

			if !ps.atPunct(",") {
				break
			}
			ps.advance()
		}
	}

	if err := ps.expectPunct(")"); err != nil {
		return nil, err
	}

	body, err := ps.parseBlock()
	if err != nil {
		return nil, err
	}

	fn.Body = body

	return fn, nil
}

func (ps *parseState) parseParam() (*ast.Param, error) {
	pos := ps.pos()

	baseType, err := ps.parseBaseType()
	if err != nil {
		return nil, err
	}

	name, err := ps.expectIdent()
	if err != nil {
		return nil, err
	}

	param := &ast.Param{Base: ast.Base{Pos: pos}, Name: name, BaseType: baseType}

	if ps.atPunct("[") {
		ps.advance()

		if err := ps.expectPunct("]"); err != nil {
			return nil, err
		}

		dims := []int{0}

		for ps.atPunct("[") {
			ps.advance()

			t := ps.cur()
			if t.kind != tokInt {
				return nil, errAt(ps.pos(), "expected array size, got %q", t.text)
			}
			ps.advance()

			dims = append(dims, t.ival)

			if err := ps.expectPunct("]"); err != nil {
				return nil, err
			}
		}

		param.Array = &ast.ArrayDef{Dims: dims, UnsizedFirst: true}
	}

	return param, nil
}

func (ps *parseState) parseBlock() (*ast.Block, error) {
	pos := ps.pos()

	if err := ps.expectPunct("{"); err != nil {
		return nil, err
	}

	b := &ast.Block{Base: ast.Base{Pos: pos}}

	for !ps.atPunct("}") {
		stmt, err := ps.parseStmt()
		if err != nil {
			return nil, err
		}

		b.Stmts = append(b.Stmts, stmt)
	}

	if err := ps.expectPunct("}"); err != nil {
		return nil, err
	}

	return b, nil
}

func (ps *parseState) parseStmt() (ast.Stmt, error) {
	pos := ps.pos()

	switch {
	case ps.atPunct(";"):
		ps.advance()
		return &ast.Empty{Base: ast.Base{Pos: pos}}, nil

	case ps.atPunct("{"):
		return ps.parseBlock()

	case ps.atKeyword("int") || ps.atKeyword("void"):
		baseType, err := ps.parseBaseType()
		if err != nil {
			return nil, err
		}

		name, err := ps.expectIdent()
		if err != nil {
			return nil, err
		}

		decl, err := ps.parseVarDeclRest(pos, baseType, name)
		if err != nil {
			return nil, err
		}

		if err := ps.expectPunct(";"); err != nil {
			return nil, err
		}

		return &ast.LocalDecl{Base: ast.Base{Pos: pos}, Decl: decl}, nil

	case ps.atKeyword("if"):
		ps.advance()

		if err := ps.expectPunct("("); err != nil {
			return nil, err
		}

		cond, err := ps.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := ps.expectPunct(")"); err != nil {
			return nil, err
		}

		then, err := ps.parseStmt()
		if err != nil {
			return nil, err
		}

		stmt := &ast.If{Base: ast.Base{Pos: pos}, Cond: cond, Then: then}

		if ps.atKeyword("else") {
			ps.advance()

			els, err := ps.parseStmt()
			if err != nil {
				return nil, err
			}

			stmt.Else = els
		}

		return stmt, nil

	case ps.atKeyword("while"):
		ps.advance()

		if err := ps.expectPunct("("); err != nil {
			return nil, err
		}

		cond, err := ps.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := ps.expectPunct(")"); err != nil {
			return nil, err
		}

		body, err := ps.parseStmt()
		if err != nil {
			return nil, err
		}

		return &ast.While{Base: ast.Base{Pos: pos}, Cond: cond, Body: body}, nil

	case ps.atKeyword("return"):
		ps.advance()

		stmt := &ast.Return{Base: ast.Base{Pos: pos}}

		if !ps.atPunct(";") {
			expr, err := ps.parseExpr()
			if err != nil {
				return nil, err
			}

			stmt.Expr = expr
		}

		if err := ps.expectPunct(";"); err != nil {
			return nil, err
		}

		return stmt, nil

	default:
		return ps.parseSimpleStmt(pos)
	}
}

// parseSimpleStmt disambiguates an assignment from a bare expression
// statement by parsing an expression first and checking for a
// following '='; only an LVal can be re-interpreted as an assignment
// target.
func (ps *parseState) parseSimpleStmt(pos int) (ast.Stmt, error) {
	expr, err := ps.parseExpr()
	if err != nil {
		return nil, err
	}

	if ps.atPunct("=") {
		lval, ok := expr.(*ast.LVal)
		if !ok {
			return nil, errAt(pos, "left side of assignment is not an lvalue")
		}

		ps.advance()

		rhs, err := ps.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := ps.expectPunct(";"); err != nil {
			return nil, err
		}

		return &ast.Assign{Base: ast.Base{Pos: pos}, LVal: lval, Rhs: rhs}, nil
	}

	if err := ps.expectPunct(";"); err != nil {
		return nil, err
	}

	return &ast.ExprStmt{Base: ast.Base{Pos: pos}, Expr: expr}, nil
}

func (ps *parseState) parseExpr() (ast.Expr, error) {
	return ps.parseLOr()
}

func (ps *parseState) parseLOr() (ast.Expr, error) {
	left, err := ps.parseLAnd()
	if err != nil {
		return nil, err
	}

	for ps.atPunct("||") {
		pos := ps.pos()
		ps.advance()

		right, err := ps.parseLAnd()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Base: ast.Base{Pos: pos}, Op: ast.LOr, Left: left, Right: right}
	}

	return left, nil
}

func (ps *parseState) parseLAnd() (ast.Expr, error) {
	left, err := ps.parseRel()
	if err != nil {
		return nil, err
	}

	for ps.atPunct("&&") {
		pos := ps.pos()
		ps.advance()

		right, err := ps.parseRel()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Base: ast.Base{Pos: pos}, Op: ast.LAnd, Left: left, Right: right}
	}

	return left, nil
}

var relOps = map[string]ast.BinaryOp{
	"<": ast.Lt, "<=": ast.Le, ">": ast.Gt, ">=": ast.Ge, "==": ast.Eq, "!=": ast.Neq,
}

func (ps *parseState) parseRel() (ast.Expr, error) {
	left, err := ps.parseAdd()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := relOps[ps.cur().text]
		if !ok || ps.cur().kind != tokPunct {
			return left, nil
		}

		pos := ps.pos()
		ps.advance()

		right, err := ps.parseAdd()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Base: ast.Base{Pos: pos}, Op: op, Left: left, Right: right}
	}
}

func (ps *parseState) parseAdd() (ast.Expr, error) {
	left, err := ps.parseMul()
	if err != nil {
		return nil, err
	}

	for ps.atPunct("+") || ps.atPunct("-") {
		pos := ps.pos()
		op := ast.BinaryOp(ps.cur().text)
		ps.advance()

		right, err := ps.parseMul()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Base: ast.Base{Pos: pos}, Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (ps *parseState) parseMul() (ast.Expr, error) {
	left, err := ps.parseUnary()
	if err != nil {
		return nil, err
	}

	for ps.atPunct("*") || ps.atPunct("/") || ps.atPunct("%") {
		pos := ps.pos()
		op := ast.BinaryOp(ps.cur().text)
		ps.advance()

		right, err := ps.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Base: ast.Base{Pos: pos}, Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (ps *parseState) parseUnary() (ast.Expr, error) {
	if ps.atPunct("+") || ps.atPunct("-") || ps.atPunct("!") {
		pos := ps.pos()
		op := ast.UnaryOp(ps.cur().text)
		ps.advance()

		x, err := ps.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.Unary{Base: ast.Base{Pos: pos}, Op: op, X: x}, nil
	}

	return ps.parsePrimary()
}

func (ps *parseState) parsePrimary() (ast.Expr, error) {
	pos := ps.pos()
	t := ps.cur()

	switch {
	case t.kind == tokInt:
		ps.advance()
		return &ast.IntConst{Base: ast.Base{Pos: pos}, Val: t.ival}, nil

	case ps.atPunct("("):
		ps.advance()

		e, err := ps.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := ps.expectPunct(")"); err != nil {
			return nil, err
		}

		return e, nil

	case t.kind == tokIdent:
		ps.advance()

		if ps.atPunct("(") {
			ps.advance()

			call := &ast.Call{Base: ast.Base{Pos: pos}, Name: t.text}

			if !ps.atPunct(")") {
				for {
					arg, err := ps.parseExpr()
					if err != nil {
						return nil, err
					}

					call.Args = append(call.Args, arg)

					if !ps.atPunct(",") {
						break
					}
					ps.advance()
				}
			}

			if err := ps.expectPunct(")"); err != nil {
				return nil, err
			}

			return call, nil
		}

		lval := &ast.LVal{Base: ast.Base{Pos: pos}, Name: t.text}

		for ps.atPunct("[") {
			ps.advance()

			sub, err := ps.parseExpr()
			if err != nil {
				return nil, err
			}

			lval.Subs = append(lval.Subs, sub)

			if err := ps.expectPunct("]"); err != nil {
				return nil, err
			}
		}

		return lval, nil

	default:
		return nil, errAt(pos, "unexpected token %q", t.text)
	}
}
