package lower

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/ir"
)

// identityFunc builds the AST for `int id(int x) { return x; }` (spec.md
// §8 scenario 1).
func identityFunc() *ast.CompUnit {
	return &ast.CompUnit{
		Items: []ast.Node{
			&ast.FuncDef{
				RetType: ast.Int,
				Name:    "id",
				Params: []*ast.Param{
					{Name: "x", BaseType: ast.Int},
				},
				Body: &ast.Block{
					Stmts: []ast.Stmt{
						&ast.Return{Expr: &ast.LVal{Name: "x"}},
					},
				},
			},
		},
	}
}

func TestLowerIdentityFunction(t *testing.T) {
	program, err := Lower(context.Background(), identityFunc())
	require.NoError(t, err)

	require.IsType(t, ir.FuncDef{}, program[0])
	require.Equal(t, ir.FuncDef{Name: "id"}, program[0])
	require.IsType(t, ir.Param{}, program[1])

	last := program[len(program)-1]
	ret, ok := last.(ir.ReturnWithVal)
	require.True(t, ok, "expected a ReturnWithVal, got %T", last)

	cp, ok := program[len(program)-2].(ir.Assign)
	require.True(t, ok, "reading x copies it into a temporary, got %T", program[len(program)-2])
	require.Equal(t, program[1].(ir.Param).Name, cp.Src)
	require.Equal(t, cp.Dst, ret.Name)
}

// TestLowerShortCircuitAnd checks spec.md §8's short-circuit invariant:
// `if (a && b) return 1; return 0;` lowers to two CondGoto instructions
// (one per operand) with no Binop materializing the boolean.
func TestLowerShortCircuitAnd(t *testing.T) {
	cu := &ast.CompUnit{
		Items: []ast.Node{
			&ast.FuncDef{
				RetType: ast.Int,
				Name:    "f",
				Params: []*ast.Param{
					{Name: "a", BaseType: ast.Int},
					{Name: "b", BaseType: ast.Int},
				},
				Body: &ast.Block{
					Stmts: []ast.Stmt{
						&ast.If{
							Cond: &ast.Binary{
								Op:    ast.LAnd,
								Left:  &ast.LVal{Name: "a"},
								Right: &ast.LVal{Name: "b"},
							},
							Then: &ast.Return{Expr: &ast.IntConst{Val: 1}},
						},
						&ast.Return{Expr: &ast.IntConst{Val: 0}},
					},
				},
			},
		},
	}

	program, err := Lower(context.Background(), cu)
	require.NoError(t, err)

	var condGotos int
	for _, n := range program {
		switch n := n.(type) {
		case ir.CondGoto:
			condGotos++
			require.NotEqual(t, "", n.Label)
		case ir.Binop:
			t.Fatalf("short-circuit lowering should not materialize a boolean via Binop, got %+v", n)
		}
	}

	require.Equal(t, 2, condGotos, "one CondGoto per && operand")
}

func TestLowerMultiDimArrayOffset(t *testing.T) {
	// int a[2][3][4]; a[i][j][k] = 7;  =>  offset (i*3+j)*4+k, scaled by 4.
	cu := &ast.CompUnit{
		Items: []ast.Node{
			&ast.FuncDef{
				RetType: ast.Void,
				Name:    "f",
				Params: []*ast.Param{
					{Name: "i", BaseType: ast.Int},
					{Name: "j", BaseType: ast.Int},
					{Name: "k", BaseType: ast.Int},
				},
				Body: &ast.Block{
					Stmts: []ast.Stmt{
						&ast.LocalDecl{Decl: &ast.VarDecl{
							BaseType: ast.Int,
							Defs: []*ast.VarDef{
								{Name: "a", Array: &ast.ArrayDef{Dims: []int{2, 3, 4}}},
							},
						}},
						&ast.Assign{
							LVal: &ast.LVal{
								Name: "a",
								Subs: []ast.Expr{
									&ast.LVal{Name: "i"},
									&ast.LVal{Name: "j"},
									&ast.LVal{Name: "k"},
								},
							},
							Rhs: &ast.IntConst{Val: 7},
						},
						&ast.Return{},
					},
				},
			},
		},
	}

	program, err := Lower(context.Background(), cu)
	require.NoError(t, err)

	var sawStore bool
	var scales []int
	for _, n := range program {
		if _, ok := n.(ir.Store); ok {
			sawStore = true
		}
		if b, ok := n.(ir.BinopImm); ok && b.Op == ir.Mul {
			scales = append(scales, b.Imm)
		}
	}
	require.True(t, sawStore, "subscripted array assignment lowers to a Store")
	require.Equal(t, []int{4, 16, 48}, scales, "k, j and i are scaled by 4, 4*4 and 4*3*4 bytes")
}
