package front

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/ast"
)

func TestParseIdentityFunction(t *testing.T) {
	var p Parser

	cu, err := p.ParseFile([]byte(`int id(int x) { return x; }`))
	require.NoError(t, err)
	require.Len(t, cu.Items, 1)

	fn, ok := cu.Items[0].(*ast.FuncDef)
	require.True(t, ok)
	require.Equal(t, "id", fn.Name)
	require.Len(t, fn.Params, 1)
	require.Equal(t, "x", fn.Params[0].Name)

	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)

	lval, ok := ret.Expr.(*ast.LVal)
	require.True(t, ok)
	require.Equal(t, "x", lval.Name)
}

func TestParseGlobalArrayAndCall(t *testing.T) {
	var p Parser

	src := `
int a[2][3] = {{1, 2, 3}, {4, 5, 6}};

int add(int x, int y) {
	return x + y;
}

int main() {
	int r;
	r = add(a[0][1], 2);
	if (r > 0 && r < 100) {
		return r;
	} else {
		return 0;
	}
}
`

	cu, err := p.ParseFile([]byte(src))
	require.NoError(t, err)
	require.Len(t, cu.Items, 3)

	decl, ok := cu.Items[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, []int{2, 3}, decl.Defs[0].Array.Dims)

	main, ok := cu.Items[2].(*ast.FuncDef)
	require.True(t, ok)
	require.Equal(t, "main", main.Name)
}

func TestParseUnaryAndPrecedence(t *testing.T) {
	var p Parser

	cu, err := p.ParseFile([]byte(`int f() { return -1 + 2 * 3; }`))
	require.NoError(t, err)

	fn := cu.Items[0].(*ast.FuncDef)
	ret := fn.Body.Stmts[0].(*ast.Return)

	top, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Add, top.Op)

	_, ok = top.Left.(*ast.Unary)
	require.True(t, ok, "left operand of + is the unary minus")

	mul, ok := top.Right.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.Mul, mul.Op)
}

func TestParseSyntaxError(t *testing.T) {
	var p Parser

	_, err := p.ParseFile([]byte(`int f( { return 0; }`))
	require.Error(t, err)
}
