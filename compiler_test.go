package minic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileIdentityFunction(t *testing.T) {
	obj, err := Compile(context.Background(), []byte(`int id(int x) { return x; }`))
	require.NoError(t, err)

	text := string(obj)
	require.Contains(t, text, "_minilib_start:")
	require.Contains(t, text, "id:")
	require.Contains(t, text, "ret")
}

func TestCompileGlobalAndCall(t *testing.T) {
	src := `
int counter;

int inc(int n) {
	return n + 1;
}

int main() {
	counter = inc(counter);
	return counter;
}
`

	obj, err := Compile(context.Background(), []byte(src))
	require.NoError(t, err)

	text := string(obj)
	require.Contains(t, text, "counter:")
	require.Contains(t, text, "inc:")
	require.Contains(t, text, "main:")
	require.Contains(t, text, "call inc")
}

func TestCompileParseError(t *testing.T) {
	_, err := Compile(context.Background(), []byte(`int f( { }`))
	require.Error(t, err)
}
