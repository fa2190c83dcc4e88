package parse

import (
	"fmt"
	"strconv"

	"github.com/paveg/tidyframe/internal/expr"
)

// DefaultMaxDepth bounds expression nesting when no other limit is configured.
const DefaultMaxDepth = 64

// SyntaxError reports a grammar violation in an expression string.
type SyntaxError struct {
	Src      string
	Position int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression %q at offset %d: %s", e.Src, e.Position, e.Msg)
}

// Parse parses src using DefaultMaxDepth.
func Parse(src string) (expr.Expr, error) {
	return ParseWithDepth(src, DefaultMaxDepth)
}

// ParseWithDepth parses src, rejecting nesting deeper than maxDepth.
// A maxDepth of zero or less means DefaultMaxDepth.
func ParseWithDepth(src string, maxDepth int) (expr.Expr, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := NewParser(NewLexer(src), maxDepth)
	e := p.ParseExpression()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return e, nil
}

// Precedence constants for expression parsing.
const (
	_ int = iota
	LOWEST
	LOGICALOR  // or, |
	LOGICALAND // and
	NOTPREC    // not X
	COMPARE    // == != < <= > >=
	SUMPREC    // + -
	PRODUCT    // * /
	PREFIX     // -X or +X
	CALL       // myFunction(X)
)

// getPrecedencesMap returns the precedences map. Rejected operators sit at
// CALL so the infix loop always reaches them and reports a specific error.
func getPrecedencesMap() map[TokenType]int {
	//nolint:exhaustive // Only tokens with precedence need to be mapped
	return map[TokenType]int{
		OR:       LOGICALOR,
		PIPE:     LOGICALOR,
		AND:      LOGICALAND,
		EQ:       COMPARE,
		NE:       COMPARE,
		LT:       COMPARE,
		GT:       COMPARE,
		LE:       COMPARE,
		GE:       COMPARE,
		PLUS:     SUMPREC,
		MINUS:    SUMPREC,
		DIV:      PRODUCT,
		MULT:     PRODUCT,
		LPAREN:   CALL,
		MOD:      CALL,
		POW:      CALL,
		AMP:      CALL,
		CARET:    CALL,
		SHL:      CALL,
		SHR:      CALL,
		FLOORDIV: CALL,
		DOT:      CALL,
		ASSIGN:   CALL,
		TILDE:    CALL,
		LBRACKET: CALL,
		RBRACKET: CALL,
		ILLEGAL:  CALL,
		IDENT:    CALL,
		INT:      CALL,
		FLOAT:    CALL,
		STRING:   CALL,
	}
}

// Parser parses expression tokens into an expression tree.
type Parser struct {
	lexer *Lexer

	curToken  Token
	peekToken Token

	depth    int
	maxDepth int

	errors []*SyntaxError
}

// NewParser creates a new parser instance.
func NewParser(lexer *Lexer, maxDepth int) *Parser {
	p := &Parser{
		lexer:    lexer,
		maxDepth: maxDepth,
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken advances both curToken and peekToken.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// Errors returns parse errors.
func (p *Parser) Errors() []*SyntaxError {
	return p.errors
}

// ParseExpression parses the whole input as one expression.
func (p *Parser) ParseExpression() expr.Expr {
	if p.curTokenIs(EOF) {
		p.addError(p.curToken, "empty expression")
		return nil
	}
	e, ok := p.parseExpression(LOWEST)
	if !ok {
		return nil
	}
	if !p.peekTokenIs(EOF) {
		p.addError(p.peekToken, fmt.Sprintf("unexpected %q", p.peekToken.Literal))
		return nil
	}
	return e
}

// parseExpression parses expressions using Pratt parser.
func (p *Parser) parseExpression(precedence int) (expr.Expr, bool) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.addError(p.curToken, fmt.Sprintf("expression nested deeper than %d levels", p.maxDepth))
		return nil, false
	}

	// Parse prefix expression
	left, ok := p.parsePrefix()
	if !ok {
		return nil, false
	}

	// Parse infix expressions
	for precedence < p.peekPrecedence() {
		left, ok = p.parseInfix(left)
		if !ok {
			return nil, false
		}
	}

	return left, true
}

// parsePrefix parses prefix expressions.
func (p *Parser) parsePrefix() (expr.Expr, bool) {
	//nolint:exhaustive // Parser handles only specific prefix token types
	switch p.curToken.Type {
	case IDENT:
		return p.parseIdentifier()
	case INT:
		return p.parseIntegerLiteral()
	case FLOAT:
		return p.parseFloatLiteral()
	case STRING:
		return expr.Lit(p.curToken.Literal), true
	case TRUE, FALSE:
		return expr.Lit(p.curTokenIs(TRUE)), true
	case MINUS, PLUS:
		return p.parseUnaryExpression()
	case NOT:
		return p.parseNotExpression()
	case LPAREN:
		return p.parseGroupedExpression()
	case EOF:
		p.addError(p.curToken, "unexpected end of expression")
		return nil, false
	case ILLEGAL:
		return nil, p.illegal(p.curToken)
	default:
		if msg, rejected := rejectedOperator(p.curToken.Type); rejected {
			p.addError(p.curToken, msg)
			return nil, false
		}
		p.addError(p.curToken, fmt.Sprintf("unexpected %q", p.curToken.Literal))
		return nil, false
	}
}

// parseInfix parses infix expressions.
func (p *Parser) parseInfix(left expr.Expr) (expr.Expr, bool) {
	//nolint:exhaustive // Parser handles only specific infix token types
	switch p.peekToken.Type {
	case PLUS, MINUS, MULT, DIV:
		p.nextToken()
		return p.parseBinaryExpression(left)
	case EQ, NE, LT, LE, GT, GE:
		p.nextToken()
		return p.parseComparison(left)
	case AND, OR, PIPE:
		p.nextToken()
		return p.parseLogicalExpression(left)
	case LPAREN:
		p.nextToken()
		p.addError(p.curToken, "only named functions may be called")
		return nil, false
	case ILLEGAL:
		p.nextToken()
		return nil, p.illegal(p.curToken)
	case IDENT, INT, FLOAT, STRING:
		p.nextToken()
		p.addError(p.curToken, fmt.Sprintf("unexpected %q", p.curToken.Literal))
		return nil, false
	default:
		p.nextToken()
		msg, _ := rejectedOperator(p.curToken.Type)
		p.addError(p.curToken, msg)
		return nil, false
	}
}

// rejectedOperator describes tokens the lexer knows but the grammar refuses.
func rejectedOperator(t TokenType) (string, bool) {
	//nolint:exhaustive // Only rejected tokens are described
	switch t {
	case MOD, POW, AMP, CARET, TILDE, SHL, SHR, FLOORDIV:
		return fmt.Sprintf("operator %q is not allowed", tokenSymbols[t]), true
	case DOT:
		return "attribute access is not allowed", true
	case ASSIGN:
		return "assignment is not allowed", true
	case LBRACKET, RBRACKET:
		return "subscripts are not allowed", true
	default:
		return "", false
	}
}

var tokenSymbols = map[TokenType]string{
	MOD:      "%",
	POW:      "**",
	AMP:      "&",
	CARET:    "^",
	TILDE:    "~",
	SHL:      "<<",
	SHR:      ">>",
	FLOORDIV: "//",
}

func (p *Parser) illegal(tok Token) bool {
	if len(tok.Literal) > 0 && (tok.Literal[0] == '\'' || tok.Literal[0] == '"') {
		p.addError(tok, "unterminated string literal")
	} else {
		p.addError(tok, fmt.Sprintf("invalid token %q", tok.Literal))
	}
	return false
}

// Helper functions for token checking.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t TokenType, want string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	if msg, rejected := rejectedOperator(p.peekToken.Type); rejected {
		p.addError(p.peekToken, msg)
		return false
	}
	if p.peekTokenIs(EOF) {
		p.addError(p.peekToken, fmt.Sprintf("expected %s, got end of expression", want))
		return false
	}
	p.addError(p.peekToken, fmt.Sprintf("expected %s, got %q", want, p.peekToken.Literal))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := getPrecedencesMap()[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := getPrecedencesMap()[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) addError(tok Token, msg string) {
	p.errors = append(p.errors, &SyntaxError{Src: p.lexer.input, Position: tok.Position, Msg: msg})
}

func (p *Parser) parseIdentifier() (expr.Expr, bool) {
	// Check if this is a function call (identifier followed by LPAREN)
	if p.peekTokenIs(LPAREN) {
		return p.parseFunctionCall()
	}
	return expr.Col(p.curToken.Literal), true
}

func (p *Parser) parseIntegerLiteral() (expr.Expr, bool) {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
		return nil, false
	}
	return expr.Lit(value), true
}

func (p *Parser) parseFloatLiteral() (expr.Expr, bool) {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as float", p.curToken.Literal))
		return nil, false
	}
	return expr.Lit(value), true
}

func (p *Parser) parseUnaryExpression() (expr.Expr, bool) {
	op := expr.UnaryNeg
	if p.curTokenIs(PLUS) {
		op = expr.UnaryPlus
	}
	p.nextToken()

	operand, ok := p.parseExpression(PREFIX)
	if !ok {
		return nil, false
	}
	return expr.Unary(op, operand), true
}

// parseNotExpression binds looser than comparisons: "not a == b" negates the
// comparison.
func (p *Parser) parseNotExpression() (expr.Expr, bool) {
	p.nextToken()

	operand, ok := p.parseExpression(NOTPREC)
	if !ok {
		return nil, false
	}
	return expr.Unary(expr.UnaryNot, operand), true
}

func (p *Parser) parseGroupedExpression() (expr.Expr, bool) {
	p.nextToken() // consume '('

	exp, ok := p.parseExpression(LOWEST)
	if !ok {
		return nil, false
	}

	if !p.expectPeek(RPAREN, "')'") {
		return nil, false
	}

	return exp, true
}

var binaryOps = map[TokenType]expr.BinaryOp{
	PLUS:  expr.OpAdd,
	MINUS: expr.OpSub,
	MULT:  expr.OpMul,
	DIV:   expr.OpDiv,
	EQ:    expr.OpEq,
	NE:    expr.OpNe,
	LT:    expr.OpLt,
	LE:    expr.OpLe,
	GT:    expr.OpGt,
	GE:    expr.OpGe,
	AND:   expr.OpAnd,
	OR:    expr.OpOr,
	PIPE:  expr.OpBitOr,
}

func (p *Parser) parseBinaryExpression(left expr.Expr) (expr.Expr, bool) {
	op := binaryOps[p.curToken.Type]
	precedence := p.curPrecedence()
	p.nextToken()

	right, ok := p.parseExpression(precedence)
	if !ok {
		return nil, false
	}
	return expr.Binary(left, op, right), true
}

// parseComparison handles chains: "a < b < c" means "a < b and b < c".
func (p *Parser) parseComparison(left expr.Expr) (expr.Expr, bool) {
	op := binaryOps[p.curToken.Type]
	p.nextToken()

	right, ok := p.parseExpression(COMPARE)
	if !ok {
		return nil, false
	}
	result := expr.Expr(expr.Binary(left, op, right))

	for p.peekPrecedence() == COMPARE {
		p.nextToken()
		op = binaryOps[p.curToken.Type]
		p.nextToken()
		next, ok := p.parseExpression(COMPARE)
		if !ok {
			return nil, false
		}
		result = expr.Binary(result, expr.OpAnd, expr.Binary(right, op, next))
		right = next
	}
	return result, true
}

func (p *Parser) parseLogicalExpression(left expr.Expr) (expr.Expr, bool) {
	return p.parseBinaryExpression(left)
}

func (p *Parser) parseFunctionCall() (expr.Expr, bool) {
	nameTok := p.curToken
	fn, ok := expr.LookupFunction(nameTok.Literal)
	if !ok {
		p.addError(nameTok, fmt.Sprintf("function %q is not allowed", nameTok.Literal))
		return nil, false
	}
	p.nextToken() // consume name, cur is '('

	args, ok := p.parseExpressionList(RPAREN)
	if !ok {
		return nil, false
	}
	if len(args) != fn.Arity {
		p.addError(nameTok, fmt.Sprintf("%s() takes %d argument(s), got %d", fn.Name, fn.Arity, len(args)))
		return nil, false
	}
	return expr.NewFunction(fn.Name, args...), true
}

func (p *Parser) parseExpressionList(end TokenType) ([]expr.Expr, bool) {
	var args []expr.Expr

	if p.peekTokenIs(end) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg, ok := p.parseExpression(LOWEST)
	if !ok {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(COMMA) {
		p.nextToken()
		p.nextToken()
		nextArg, nextOk := p.parseExpression(LOWEST)
		if !nextOk {
			return nil, false
		}
		args = append(args, nextArg)
	}

	if !p.expectPeek(end, "')' or ','") {
		return nil, false
	}

	return args, true
}
