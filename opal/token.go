package opal

import "strings"

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenEOF TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenInt    TokenType = "INT"
	tokenFloat  TokenType = "FLOAT"
	tokenString TokenType = "STRING"

	tokenAssign    TokenType = "="
	tokenPlus      TokenType = "+"
	tokenMinus     TokenType = "-"
	tokenAsterisk  TokenType = "*"
	tokenSlash     TokenType = "/"
	tokenLT        TokenType = "<"
	tokenGT        TokenType = ">"
	tokenEQ        TokenType = "=="
	tokenNotEQ     TokenType = "!="
	tokenComma     TokenType = ","
	tokenDot       TokenType = "."
	tokenSemicolon TokenType = ";"
	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenLBrace    TokenType = "{"
	tokenRBrace    TokenType = "}"

	tokenPrint    TokenType = "PRINT"
	tokenIf       TokenType = "IF"
	tokenElse     TokenType = "ELSE"
	tokenWhile    TokenType = "WHILE"
	tokenClass    TokenType = "CLASS"
	tokenNew      TokenType = "NEW"
	tokenExtends  TokenType = "EXTENDS"
	tokenThis     TokenType = "THIS"
	tokenSuper    TokenType = "SUPER"
	tokenFunction TokenType = "FUNCTION"
	tokenReturn   TokenType = "RETURN"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a line and column in the source file, both 1-based.
type Position struct {
	Line   int
	Column int
}

func lookupIdent(ident string) TokenType {
	switch ident {
	case "print":
		return tokenPrint
	case "if":
		return tokenIf
	case "else":
		return tokenElse
	case "while":
		return tokenWhile
	case "class":
		return tokenClass
	case "new":
		return tokenNew
	case "extends":
		return tokenExtends
	case "this":
		return tokenThis
	case "super":
		return tokenSuper
	case "function":
		return tokenFunction
	case "return":
		return tokenReturn
	}
	return tokenIdent
}

func tokenLabel(tt TokenType) string {
	switch tt {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenInt:
		return "integer"
	case tokenFloat:
		return "float"
	case tokenString:
		return "string"
	case tokenPrint, tokenIf, tokenElse, tokenWhile, tokenClass, tokenNew,
		tokenExtends, tokenThis, tokenSuper, tokenFunction, tokenReturn:
		return "'" + strings.ToLower(string(tt)) + "'"
	default:
		return "\"" + string(tt) + "\""
	}
}
