package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/lexer"
)

func TestNextTokenCoversAllOperators(t *testing.T) {
	l := lexer.New("f(x) := x+1-2*3/4%5 = 6 <> 7 >= 8 <= 9 > 1 < 2 . ,")
	var types []lexer.TokenType
	for {
		tok := l.NextToken()
		if tok.Type == lexer.EOF {
			break
		}
		types = append(types, tok.Type)
	}
	require.Contains(t, types, lexer.ASSIGN)
	require.Contains(t, types, lexer.NEQ)
	require.Contains(t, types, lexer.GTE)
	require.Contains(t, types, lexer.LTE)
	require.Contains(t, types, lexer.DOT)
	require.Contains(t, types, lexer.COMMA)
}

func TestNextTokenIdentAndNumber(t *testing.T) {
	l := lexer.New("foo_1 42")
	tok := l.NextToken()
	require.Equal(t, lexer.IDENT, tok.Type)
	require.Equal(t, "foo_1", tok.Lit)
	tok = l.NextToken()
	require.Equal(t, lexer.NUMBER, tok.Type)
	require.Equal(t, "42", tok.Lit)
}
