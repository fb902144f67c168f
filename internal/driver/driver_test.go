package driver_test

import (
	"bytes"
	"testing"

	"github.com/mna/slang/internal/config"
	"github.com/mna/slang/internal/driver"
	"github.com/stretchr/testify/require"
)

func TestRunHappyPath(t *testing.T) {
	d := driver.New(config.Default())
	var out bytes.Buffer
	res, err := d.Run("t.sl", []byte(`
let x: i32 = 1;
let y: i32 = 2;
print_value(x + y);
`), &out, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Compiled)
	require.Equal(t, "3\n", out.String())
	require.False(t, d.Diags.HasErrors())
}

func TestRunStopsBeforeAnalyzeOnParseError(t *testing.T) {
	d := driver.New(config.Default())
	var out bytes.Buffer
	res, err := d.Run("t.sl", []byte(`let x: i32 = ;`), &out, nil)
	require.Error(t, err)
	require.Nil(t, res.Symbols)
	require.True(t, d.Diags.HasErrors())
}

func TestRunStopsBeforeCodegenOnSemanticError(t *testing.T) {
	d := driver.New(config.Default())
	var out bytes.Buffer
	res, err := d.Run("t.sl", []byte(`let x: i32 = "nope";`), &out, nil)
	require.Error(t, err)
	require.Nil(t, res.Compiled)
	require.True(t, d.Diags.HasErrors())
}

func TestTokenizeStageAlone(t *testing.T) {
	d := driver.New(config.Default())
	file, toks := d.Tokenize("t.sl", []byte(`let x = 1;`))
	require.NotNil(t, file)
	require.NotEmpty(t, toks)
	require.False(t, d.Diags.HasErrors())
}
