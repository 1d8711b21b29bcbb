package parser

import "github.com/pkg/errors"

// Parser is a recursive-descent/Pratt-style SysY parser, mirroring the
// teacher's own hand-rolled parser shape (peek/advance/at/match/expect).
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses src into a CompUnit.
func Parse(src []byte) (*CompUnit, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(toks).ParseCompUnit()
}

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind TokenKind) bool { return p.peek().Kind == kind }

func (p *Parser) expect(kind TokenKind) (Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return tok, errors.WithStack(&SyntaxError{Pos: tok.Pos, Msg: errors.Errorf("unexpected token near offset %d", tok.Pos).Error()})
	}
	return tok, nil
}

// ParseCompUnit parses the entire translation unit.
func (p *Parser) ParseCompUnit() (*CompUnit, error) {
	cu := &CompUnit{}
	for !p.at(TokEOF) {
		item, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		cu.Items = append(cu.Items, item)
	}
	return cu, nil
}

func (p *Parser) parseTopLevel() (TopLevel, error) {
	if p.at(TokConst) {
		return p.parseDecl()
	}
	// "int"/"void" ident "(" ... could be a FuncDef or a var Decl; the
	// disambiguator is whether "(" follows the identifier.
	isVoid := p.at(TokVoid)
	if !isVoid && !p.at(TokInt32) {
		return nil, p.errf("expected declaration or function definition")
	}
	typeTok := p.advance()
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if p.at(TokLParen) {
		return p.parseFuncDefTail(typeTok, nameTok.Text)
	}
	if isVoid {
		return nil, p.errf("void is not a valid variable type")
	}
	return p.parseDeclTail(false, nameTok.Text)
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return errors.WithStack(&SyntaxError{Pos: p.peek().Pos, Msg: errors.Errorf(format, args...).Error()})
}

// parseDecl parses a `const`-prefixed or plain `int` declaration starting
// fresh (used inside blocks).
func (p *Parser) parseDecl() (*Decl, error) {
	isConst := false
	if p.at(TokConst) {
		p.advance()
		isConst = true
	}
	if _, err := p.expect(TokInt32); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	return p.parseDeclTail(isConst, nameTok.Text)
}

func (p *Parser) parseDeclTail(isConst bool, firstName string) (*Decl, error) {
	decl := &Decl{IsConst: isConst}
	def, err := p.parseDef(isConst, firstName)
	if err != nil {
		return nil, err
	}
	decl.Defs = append(decl.Defs, def)
	for p.at(TokComma) {
		p.advance()
		nameTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		def, err := p.parseDef(isConst, nameTok.Text)
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
	}
	if _, err := p.expect(TokSemi); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseDef(isConst bool, name string) (*Def, error) {
	def := &Def{Name: name}
	for p.at(TokLBracket) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		def.Dims = append(def.Dims, e)
		def.IsArr = true
	}
	if p.at(TokAssign) {
		p.advance()
		init, err := p.parseInitVal()
		if err != nil {
			return nil, err
		}
		def.Init = init
	} else if isConst {
		return nil, p.errf("const %q requires an initializer", name)
	}
	return def, nil
}

func (p *Parser) parseInitVal() (InitVal, error) {
	if p.at(TokLBrace) {
		p.advance()
		list := &InitList{}
		if !p.at(TokRBrace) {
			item, err := p.parseInitVal()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
			for p.at(TokComma) {
				p.advance()
				item, err := p.parseInitVal()
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, item)
			}
		}
		if _, err := p.expect(TokRBrace); err != nil {
			return nil, err
		}
		return list, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &InitExpr{Expr: e}, nil
}

func (p *Parser) parseFuncDefTail(typeTok Token, name string) (*FuncDef, error) {
	retType := "int"
	if typeTok.Kind == TokVoid {
		retType = "void"
	}
	fd := &FuncDef{RetType: retType, Name: name}
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	if !p.at(TokRParen) {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		fd.Params = append(fd.Params, param)
		for p.at(TokComma) {
			p.advance()
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			fd.Params = append(fd.Params, param)
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fd.Body = body
	return fd, nil
}

func (p *Parser) parseParam() (*Param, error) {
	if _, err := p.expect(TokInt32); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	param := &Param{Name: nameTok.Text}
	if p.at(TokLBracket) {
		param.IsArray = true
		p.advance() // first "["
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		for p.at(TokLBracket) {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
			param.Dims = append(param.Dims, e)
		}
	}
	return param, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	blk := &Block{}
	for !p.at(TokRBrace) {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		blk.Items = append(blk.Items, item)
	}
	p.advance() // "}"
	return blk, nil
}

func (p *Parser) parseBlockItem() (BlockItem, error) {
	if p.at(TokConst) || p.at(TokInt32) {
		return p.parseDecl()
	}
	return p.parseStmt()
}

func (p *Parser) parseStmt() (Stmt, error) {
	switch {
	case p.at(TokLBrace):
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Block: blk}, nil
	case p.at(TokIf):
		return p.parseIf()
	case p.at(TokWhile):
		return p.parseWhile()
	case p.at(TokBreak):
		p.advance()
		if _, err := p.expect(TokSemi); err != nil {
			return nil, err
		}
		return &BreakStmt{}, nil
	case p.at(TokContinue):
		p.advance()
		if _, err := p.expect(TokSemi); err != nil {
			return nil, err
		}
		return &ContinueStmt{}, nil
	case p.at(TokReturn):
		p.advance()
		if p.at(TokSemi) {
			p.advance()
			return &ReturnStmt{}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemi); err != nil {
			return nil, err
		}
		return &ReturnStmt{Exp: e}, nil
	case p.at(TokSemi):
		p.advance()
		return &ExprStmt{}, nil
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt disambiguates an assignment from a bare expression
// statement by speculative lookahead: both start with a primary
// expression, but only an assignment is followed by "=".
func (p *Parser) parseSimpleStmt() (Stmt, error) {
	save := p.pos
	if p.at(TokIdent) {
		lval, ok := p.tryParseLVal()
		if ok && p.at(TokAssign) {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokSemi); err != nil {
				return nil, err
			}
			return &AssignStmt{LVal: lval, Exp: e}, nil
		}
		p.pos = save
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi); err != nil {
		return nil, err
	}
	return &ExprStmt{Exp: e}, nil
}

func (p *Parser) tryParseLVal() (*LVal, bool) {
	nameTok := p.advance()
	lv := &LVal{Name: nameTok.Text}
	for p.at(TokLBracket) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, false
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, false
		}
		lv.Indices = append(lv.Indices, e)
	}
	return lv, true
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // "if"
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	ifs := &IfStmt{Cond: cond, Then: then}
	if p.at(TokElse) {
		p.advance()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		ifs.Else = elseStmt
	}
	return ifs, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // "while"
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body}, nil
}

// Expression grammar, precedence low to high:
//   LOr -> LAnd ("||" LAnd)*
//   LAnd -> Eq ("&&" Eq)*
//   Eq -> Rel (("=="|"!=") Rel)*
//   Rel -> Add (("<"|">"|"<="|">=") Add)*
//   Add -> Mul (("+"|"-") Mul)*
//   Mul -> Unary (("*"|"/"|"%") Unary)*
//   Unary -> ("+"|"-"|"!") Unary | Primary
//   Primary -> IntLit | "(" Expr ")" | ident "(" args ")" | LVal

func (p *Parser) parseExpr() (Expr, error) { return p.parseLOr() }

func (p *Parser) parseLOr() (Expr, error) {
	l, err := p.parseLAnd()
	if err != nil {
		return nil, err
	}
	for p.at(TokOr) {
		p.advance()
		r, err := p.parseLAnd()
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{Op: "||", L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseLAnd() (Expr, error) {
	l, err := p.parseEq()
	if err != nil {
		return nil, err
	}
	for p.at(TokAnd) {
		p.advance()
		r, err := p.parseEq()
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{Op: "&&", L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseEq() (Expr, error) {
	l, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	for p.at(TokEq) || p.at(TokNe) {
		op := "=="
		if p.at(TokNe) {
			op = "!="
		}
		p.advance()
		r, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseRel() (Expr, error) {
	l, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.at(TokLt) || p.at(TokGt) || p.at(TokLe) || p.at(TokGe) {
		op := map[TokenKind]string{TokLt: "<", TokGt: ">", TokLe: "<=", TokGe: ">="}[p.peek().Kind]
		p.advance()
		r, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseAdd() (Expr, error) {
	l, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.at(TokPlus) || p.at(TokMinus) {
		op := "+"
		if p.at(TokMinus) {
			op = "-"
		}
		p.advance()
		r, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseMul() (Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(TokStar) || p.at(TokSlash) || p.at(TokPercent) {
		op := map[TokenKind]string{TokStar: "*", TokSlash: "/", TokPercent: "%"}[p.peek().Kind]
		p.advance()
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = &BinaryExpr{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.at(TokPlus) || p.at(TokMinus) || p.at(TokNot) {
		op := map[TokenKind]string{TokPlus: "+", TokMinus: "-", TokNot: "!"}[p.peek().Kind]
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch {
	case p.at(TokInt):
		tok := p.advance()
		return &IntLit{Val: tok.Int}, nil
	case p.at(TokLParen):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case p.at(TokIdent):
		nameTok := p.advance()
		if p.at(TokLParen) {
			p.advance()
			call := &CallExpr{Func: nameTok.Text}
			if !p.at(TokRParen) {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				for p.at(TokComma) {
					p.advance()
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					call.Args = append(call.Args, arg)
				}
			}
			if _, err := p.expect(TokRParen); err != nil {
				return nil, err
			}
			return call, nil
		}
		lv := &LVal{Name: nameTok.Text}
		for p.at(TokLBracket) {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
			lv.Indices = append(lv.Indices, e)
		}
		return &LValExpr{LVal: lv}, nil
	default:
		return nil, p.errf("unexpected token in expression")
	}
}
