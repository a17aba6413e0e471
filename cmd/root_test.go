package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so command tests do not
// leak state through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
			f.Changed = false
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command in an empty working directory and returns
// what it wrote to stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)
	t.Setenv("RESTAURANT_LOG_LEVEL", "error")
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		cfg = nil
	})

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"convert", "classify", "regions", "search", "nearest", "recommend", "serve", "store"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "restaurant-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("mapping"))
}

func TestStoreCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range storeCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"migrate", "import", "list", "stats"} {
		assert.True(t, names[name], "expected store subcommand %q not found", name)
	}
}

func TestConvertCommand_Flags(t *testing.T) {
	for _, name := range []string{"output", "encoding", "sheet", "sheet-name", "save", "concurrency"} {
		require.NotNil(t, convertCmd.Flags().Lookup(name), "convert should have --%s", name)
	}
	assert.Equal(t, "o", convertCmd.Flags().Lookup("output").Shorthand)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
	require.NotNil(t, serveCmd.Flags().Lookup("data"))
}

func TestNearestCommand_Flags(t *testing.T) {
	limit := nearestCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "4", limit.DefValue)
}

func TestBuildClassifier_Default(t *testing.T) {
	t.Cleanup(func() { cfg = nil })
	cfg = nil
	c, err := buildClassifier()
	require.NoError(t, err)
	assert.Equal(t, "강남", c.Classify("서울 강남구 역삼동"))
	assert.Equal(t, "기타", c.Fallback())
}
