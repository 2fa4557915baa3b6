package opal

import (
	"fmt"
	"strconv"
)

type parser struct {
	tokens []Token
	pos    int

	source string
}

// Parse tokenizes source and parses the token stream into a Program. It
// returns the first lexical or syntax error encountered; there is no
// error recovery.
func Parse(source string) (*Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return parseTokens(tokens, source)
}

func parseTokens(tokens []Token, source string) (*Program, error) {
	p := &parser{tokens: tokens, source: source}
	return p.parseProgram()
}

func (p *parser) curToken() Token {
	return p.tokens[p.pos]
}

func (p *parser) peekToken() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() {
	if p.pos+1 < len(p.tokens) {
		p.pos++
	}
}

// eat consumes the current token when it matches the expected type and
// fails with a syntax error otherwise. This is the parser's only error
// mechanism; the first mismatch aborts the parse.
func (p *parser) eat(tt TokenType) (Token, error) {
	tok := p.curToken()
	if tok.Type != tt {
		return Token{}, p.errorExpected(tok, tokenLabel(tt))
	}
	p.advance()
	return tok, nil
}

func (p *parser) errorExpected(tok Token, expected string) error {
	return &ParseError{
		Pos:    tok.Pos,
		Msg:    fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok.Type)),
		source: p.source,
	}
}

func (p *parser) errorUnexpected(tok Token) error {
	return &ParseError{
		Pos:    tok.Pos,
		Msg:    fmt.Sprintf("unexpected token %s", tokenLabel(tok.Type)),
		source: p.source,
	}
}

func (p *parser) parseProgram() (*Program, error) {
	program := &Program{}

	for p.curToken().Type != tokenEOF {
		var (
			stmt Statement
			err  error
		)
		if p.curToken().Type == tokenClass {
			stmt, err = p.parseClassDeclaration()
		} else {
			stmt, err = p.parseStatement()
		}
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}

	return program, nil
}

func (p *parser) parseClassDeclaration() (Statement, error) {
	classTok, err := p.eat(tokenClass)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.eat(tokenIdent)
	if err != nil {
		return nil, err
	}

	parent := ""
	if p.curToken().Type == tokenExtends {
		p.advance()
		parentTok, err := p.eat(tokenIdent)
		if err != nil {
			return nil, err
		}
		parent = parentTok.Literal
	}

	if _, err := p.eat(tokenLBrace); err != nil {
		return nil, err
	}

	var body []Statement
	for p.curToken().Type != tokenRBrace {
		if p.curToken().Type == tokenEOF {
			return nil, p.errorExpected(p.curToken(), tokenLabel(tokenRBrace))
		}
		var stmt Statement
		if p.curToken().Type == tokenFunction {
			stmt, err = p.parseMethodDeclaration()
		} else {
			stmt, err = p.parseStatement()
		}
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	if _, err := p.eat(tokenRBrace); err != nil {
		return nil, err
	}

	return &ClassStmt{Name: nameTok.Literal, Parent: parent, Body: body, position: classTok.Pos}, nil
}

func (p *parser) parseMethodDeclaration() (Statement, error) {
	fnTok, err := p.eat(tokenFunction)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.eat(tokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenLParen); err != nil {
		return nil, err
	}

	var params []string
	if p.curToken().Type != tokenRParen {
		paramTok, err := p.eat(tokenIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, paramTok.Literal)
		for p.curToken().Type == tokenComma {
			p.advance()
			paramTok, err := p.eat(tokenIdent)
			if err != nil {
				return nil, err
			}
			params = append(params, paramTok.Literal)
		}
	}
	if _, err := p.eat(tokenRParen); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &MethodStmt{Name: nameTok.Literal, Params: params, Body: body, position: fnTok.Pos}, nil
}

func (p *parser) parseStatement() (Statement, error) {
	switch p.curToken().Type {
	case tokenPrint:
		return p.parsePrintStatement()
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenLBrace:
		return p.parseBlockStatement()
	case tokenReturn:
		return p.parseReturnStatement()
	case tokenIdent:
		// One token of lookahead picks assignment or a statement-level
		// method call; anything else is an expression statement.
		switch p.peekToken().Type {
		case tokenAssign, tokenDot:
			return p.parseAssignmentOrMethodCall()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseExpressionStatement() (Statement, error) {
	pos := p.curToken().Pos
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenSemicolon); err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr, position: pos}, nil
}

func (p *parser) parseReturnStatement() (Statement, error) {
	retTok, err := p.eat(tokenReturn)
	if err != nil {
		return nil, err
	}
	var value Expression
	if p.curToken().Type != tokenSemicolon {
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(tokenSemicolon); err != nil {
		return nil, err
	}
	return &ReturnStmt{Value: value, position: retTok.Pos}, nil
}

func (p *parser) parsePrintStatement() (Statement, error) {
	printTok, err := p.eat(tokenPrint)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenLParen); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenRParen); err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenSemicolon); err != nil {
		return nil, err
	}
	return &PrintStmt{Value: expr, position: printTok.Pos}, nil
}

func (p *parser) parseAssignmentOrMethodCall() (Statement, error) {
	identTok, err := p.eat(tokenIdent)
	if err != nil {
		return nil, err
	}

	if p.curToken().Type == tokenDot {
		receiver := &Identifier{Name: identTok.Literal, position: identTok.Pos}
		call, err := p.parseDotSuffix(receiver)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokenSemicolon); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: call, position: identTok.Pos}, nil
	}

	if _, err := p.eat(tokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenSemicolon); err != nil {
		return nil, err
	}
	return &AssignStmt{Name: identTok.Literal, Value: value, position: identTok.Pos}, nil
}

// parseDotSuffix parses one `.name` link. A following `(` makes it a method
// call; otherwise it is a field read.
func (p *parser) parseDotSuffix(receiver Expression) (Expression, error) {
	dotTok, err := p.eat(tokenDot)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.eat(tokenIdent)
	if err != nil {
		return nil, err
	}
	if p.curToken().Type != tokenLParen {
		return &FieldAccessExpr{Receiver: receiver, Field: nameTok.Literal, position: dotTok.Pos}, nil
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	return &MethodCallExpr{Receiver: receiver, Method: nameTok.Literal, Args: args, position: dotTok.Pos}, nil
}

func (p *parser) parseArguments() ([]Expression, error) {
	if _, err := p.eat(tokenLParen); err != nil {
		return nil, err
	}
	var args []Expression
	if p.curToken().Type != tokenRParen {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		for p.curToken().Type == tokenComma {
			p.advance()
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	if _, err := p.eat(tokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseIfStatement() (Statement, error) {
	ifTok, err := p.eat(tokenIf)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenLParen); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenRParen); err != nil {
		return nil, err
	}

	consequent, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var alternate Statement
	if p.curToken().Type == tokenElse {
		p.advance()
		alternate, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}

	return &IfStmt{Condition: condition, Consequent: consequent, Alternate: alternate, position: ifTok.Pos}, nil
}

func (p *parser) parseWhileStatement() (Statement, error) {
	whileTok, err := p.eat(tokenWhile)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenLParen); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(tokenRParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: condition, Body: body, position: whileTok.Pos}, nil
}

func (p *parser) parseBlockStatement() (Statement, error) {
	braceTok, err := p.eat(tokenLBrace)
	if err != nil {
		return nil, err
	}
	var statements []Statement
	for p.curToken().Type != tokenRBrace {
		if p.curToken().Type == tokenEOF {
			return nil, p.errorExpected(p.curToken(), tokenLabel(tokenRBrace))
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if _, err := p.eat(tokenRBrace); err != nil {
		return nil, err
	}
	return &BlockStmt{Statements: statements, position: braceTok.Pos}, nil
}

// parseExpression parses a comparison and then any number of trailing
// `.method(args)` links. The chain binds loosest, so `1 + obj.m()` calls
// m on the sum, matching the statement grammar's method-chain level.
func (p *parser) parseExpression() (Expression, error) {
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.curToken().Type == tokenDot {
		node, err = p.parseDotSuffix(node)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *parser) parseComparison() (Expression, error) {
	node, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}
	for {
		switch op := p.curToken().Type; op {
		case tokenEQ, tokenNotEQ, tokenLT, tokenGT:
			pos := p.curToken().Pos
			p.advance()
			right, err := p.parseArithmetic()
			if err != nil {
				return nil, err
			}
			node = &BinaryExpr{Left: node, Op: op, Right: right, position: pos}
		default:
			return node, nil
		}
	}
}

func (p *parser) parseArithmetic() (Expression, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch op := p.curToken().Type; op {
		case tokenPlus, tokenMinus:
			pos := p.curToken().Pos
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			node = &BinaryExpr{Left: node, Op: op, Right: right, position: pos}
		default:
			return node, nil
		}
	}
}

func (p *parser) parseTerm() (Expression, error) {
	node, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		switch op := p.curToken().Type; op {
		case tokenAsterisk, tokenSlash:
			pos := p.curToken().Pos
			p.advance()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			node = &BinaryExpr{Left: node, Op: op, Right: right, position: pos}
		default:
			return node, nil
		}
	}
}

func (p *parser) parseFactor() (Expression, error) {
	tok := p.curToken()

	switch tok.Type {
	case tokenPlus, tokenMinus:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: tok.Type, Operand: operand, position: tok.Pos}, nil
	case tokenInt:
		p.advance()
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid integer literal %q", tok.Literal), source: p.source}
		}
		return &IntegerLiteral{Value: value, position: tok.Pos}, nil
	case tokenFloat:
		p.advance()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid float literal %q", tok.Literal), source: p.source}
		}
		return &FloatLiteral{Value: value, position: tok.Pos}, nil
	case tokenString:
		p.advance()
		return &StringLiteral{Value: tok.Literal, position: tok.Pos}, nil
	case tokenLParen:
		p.advance()
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokenRParen); err != nil {
			return nil, err
		}
		return node, nil
	case tokenIdent:
		p.advance()
		return &Identifier{Name: tok.Literal, position: tok.Pos}, nil
	case tokenThis:
		p.advance()
		return &ThisExpr{position: tok.Pos}, nil
	case tokenSuper:
		p.advance()
		return &SuperExpr{position: tok.Pos}, nil
	case tokenNew:
		p.advance()
		nameTok, err := p.eat(tokenIdent)
		if err != nil {
			return nil, err
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		return &NewExpr{ClassName: nameTok.Literal, Args: args, position: tok.Pos}, nil
	default:
		return nil, p.errorUnexpected(tok)
	}
}
