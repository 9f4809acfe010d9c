package unify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/types"
)

func firstName(t *testing.T, doc *types.UnifyDocument) string {
	t.Helper()
	require.NotEmpty(t, doc.Statements)
	return doc.Statements[0].StatementName().Value
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.NamespaceRefer)
	assert.False(t, opts.Cache)
	assert.Equal(t, DefaultConcurrency, opts.Concurrency)
	assert.Equal(t, DefaultConcurrency, Options{}.concurrency())
	assert.Equal(t, 2, Options{Concurrency: 2}.concurrency())
}

func TestParseInvalidInput(t *testing.T) {
	_, err := NewParser().Parse("index.txt", DefaultOptions(), map[string]string{"index.txt": ""})
	require.Error(t, err)
	assert.Equal(t, `invalid filePath: "index.txt"`, err.Error())
	assert.Equal(t, idlerrors.KindInvalidInput, idlerrors.KindOf(err))
}

func TestParseMissingEntry(t *testing.T) {
	_, err := NewParser().Parse("index.thrift", DefaultOptions(), map[string]string{})
	require.Error(t, err)
	assert.Equal(t, `file "index.thrift" does not exist in fileContentMap`, err.Error())
}

func TestParseImportCycle(t *testing.T) {
	files := map[string]string{
		"a.proto": "syntax = \"proto3\";\nimport \"b.proto\";\n",
		"b.proto": "syntax = \"proto3\";\nimport \"a.proto\";\n",
	}
	_, err := NewParser().Parse("a.proto", DefaultOptions(), files)
	require.Error(t, err)
	assert.ErrorIs(t, err, idlerrors.ErrImportCycle)
	assert.Equal(t, "import cycle detected: a.proto -> b.proto -> a.proto", err.Error())
}

func TestParseCache(t *testing.T) {
	first := map[string]string{"index.thrift": "struct First {}\n"}
	second := map[string]string{"index.thrift": "struct Second {}\n"}

	t.Run("enabled", func(t *testing.T) {
		p := NewParser()
		opts := DefaultOptions()
		opts.Cache = true

		doc, err := p.Parse("index.thrift", opts, first)
		require.NoError(t, err)
		assert.Equal(t, "First", firstName(t, doc))

		doc, err = p.Parse("index.thrift", opts, second)
		require.NoError(t, err)
		assert.Equal(t, "First", firstName(t, doc))
		assert.Equal(t, loader.CacheStats{Hits: 1, Misses: 1, StaleHits: 1}, p.Cache().Stats())
	})

	t.Run("disabled", func(t *testing.T) {
		p := NewParser()
		doc, err := p.Parse("index.thrift", DefaultOptions(), first)
		require.NoError(t, err)
		assert.Equal(t, "First", firstName(t, doc))

		doc, err = p.Parse("index.thrift", DefaultOptions(), second)
		require.NoError(t, err)
		assert.Equal(t, "Second", firstName(t, doc))
		assert.Equal(t, 0, p.Cache().Len())
	})

	t.Run("injected", func(t *testing.T) {
		cache, err := loader.NewDocumentCache(4)
		require.NoError(t, err)
		opts := DefaultOptions()
		opts.Cache = true

		_, err = NewParser(WithCache(cache)).Parse("index.thrift", opts, first)
		require.NoError(t, err)
		doc, err := NewParser(WithCache(cache)).Parse("index.thrift", opts, second)
		require.NoError(t, err)
		assert.Equal(t, "First", firstName(t, doc))
		assert.Equal(t, 1, cache.Len())
	})
}

func TestParseDoesNotShareResolutionState(t *testing.T) {
	p := NewParser()
	opts := DefaultOptions()
	opts.Cache = true

	withEnum := map[string]string{"a.thrift": "enum E { X = 1 }\nconst E V = E.X\n"}
	doc, err := p.Parse("a.thrift", opts, withEnum)
	require.NoError(t, err)
	constant := doc.Statements[1].(*types.ConstDefinition)
	assert.Equal(t, &types.Identifier{Value: "E.X", NamespaceValue: "root.E.X"}, constant.Initializer)

	withoutEnum := map[string]string{"b.thrift": "const i32 V = E.X\n"}
	doc, err = p.Parse("b.thrift", opts, withoutEnum)
	require.NoError(t, err)
	constant = doc.Statements[0].(*types.ConstDefinition)
	assert.Equal(t, types.Unresolved("E.X"), *constant.Initializer.(*types.Identifier))
}

func TestParseWithFileSystem(t *testing.T) {
	fs := loader.NewMemoryFileSystem(map[string]string{
		"/idl/api/index.thrift": "include \"shared.thrift\"\nstruct A {\n  1: shared.B b\n}\n",
		"/third/shared.thrift":  "namespace go shared\nstruct B {}\n",
	})
	opts := DefaultOptions()
	opts.Root = "/idl"
	opts.SearchPaths = []string{"/third"}

	doc, err := NewParser(WithFileSystem(fs)).Parse("api/index.thrift", opts, nil)
	require.NoError(t, err)
	field := structAt(t, doc, 0).Fields[0]
	assert.Equal(t, &types.Identifier{Value: "shared.B", NamespaceValue: "shared.B"}, field.FieldType)

	_, err = NewParser(WithFileSystem(fs)).Parse("api/missing.thrift", opts, nil)
	require.Error(t, err)
	assert.Equal(t, "no such file: /idl/api/missing.thrift", err.Error())
}

func TestParsePreprocess(t *testing.T) {
	opts := DefaultOptions()
	opts.Preprocess = func(content, path string) string {
		return content + "struct Added {}\n"
	}
	doc, err := NewParser().Parse("index.thrift", opts, map[string]string{"index.thrift": "struct A {}\n"})
	require.NoError(t, err)
	require.Len(t, doc.Statements, 2)
	assert.Equal(t, "Added", doc.Statements[1].StatementName().Value)
}

func TestParseTrace(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Trace = &buf
	_, err := NewParser().Parse("index.proto", opts, map[string]string{
		"index.proto": "syntax = \"proto3\";\nmessage A {\n  Nope n = 1;\n}\n",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "=== Resolution Debug Info ===")
	assert.Contains(t, buf.String(), "Unresolved (1):\n  Nope\n")
}

func TestParseContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParser().ParseContext(ctx, "index.thrift", DefaultOptions(), map[string]string{"index.thrift": "struct A {}\n"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseAll(t *testing.T) {
	files := map[string]string{
		"a.thrift": "struct A {}\n",
		"b.thrift": "struct B {}\n",
		"c.proto":  "syntax = \"proto3\";\nmessage C {}\n",
	}

	t.Run("in order", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Concurrency = 2
		docs, err := NewParser().ParseAll(context.Background(), []string{"c.proto", "a.thrift", "b.thrift"}, opts, files)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "C", firstName(t, docs[0]))
		assert.Equal(t, "A", firstName(t, docs[1]))
		assert.Equal(t, "B", firstName(t, docs[2]))
	})

	t.Run("collects failures", func(t *testing.T) {
		docs, err := NewParser().ParseAll(context.Background(), []string{"a.thrift", "x.thrift", "y.txt"}, DefaultOptions(), files)
		require.Error(t, err)
		assert.Nil(t, docs)

		var multi *idlerrors.MultiError
		require.True(t, errors.As(err, &multi))
		require.Len(t, multi.Errors, 2)
		assert.Equal(t, `x.thrift: file "x.thrift" does not exist in fileContentMap`, multi.Errors[0].Error())
		assert.Equal(t, idlerrors.KindFileNotFoundInMap, idlerrors.KindOf(multi.Errors[0]))
		assert.Equal(t, idlerrors.KindInvalidInput, idlerrors.KindOf(multi.Errors[1]))
	})

	t.Run("failure does not stop later entries", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Concurrency = 1
		_, err := NewParser().ParseAll(context.Background(), []string{"x.thrift", "a.thrift", "z.thrift"}, opts, files)

		var multi *idlerrors.MultiError
		require.True(t, errors.As(err, &multi))
		require.Len(t, multi.Errors, 2)
		assert.Contains(t, multi.Errors[0].Error(), "x.thrift")
		assert.Contains(t, multi.Errors[1].Error(), "z.thrift")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewParser().ParseAll(ctx, []string{"a.thrift", "b.thrift"}, DefaultOptions(), files)

		var multi *idlerrors.MultiError
		require.True(t, errors.As(err, &multi))
		assert.Len(t, multi.Errors, 2)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty", func(t *testing.T) {
		docs, err := NewParser().ParseAll(context.Background(), nil, DefaultOptions(), files)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestDocumentJSON(t *testing.T) {
	doc := parseThrift(t, DefaultOptions(), "struct Foo {\n  1: list<i32> ids (api.query = 'ids')\n}\n")
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	statements := decoded["statements"].([]interface{})
	require.Len(t, statements, 1)
	st := statements[0].(map[string]interface{})
	assert.Equal(t, "StructDefinition", st["type"])

	field := st["fields"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"position": "query"}, field["extensionConfig"])
	assert.Equal(t, "ListType", field["fieldType"].(map[string]interface{})["type"])
}
