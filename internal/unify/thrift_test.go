package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/types"
)

func parseThrift(t *testing.T, opts Options, src string) *types.UnifyDocument {
	t.Helper()
	doc, err := NewParser().Parse("index.thrift", opts, map[string]string{"index.thrift": src})
	require.NoError(t, err)
	return doc
}

func structAt(t *testing.T, doc *types.UnifyDocument, i int) *types.StructDefinition {
	t.Helper()
	require.Greater(t, len(doc.Statements), i)
	st, ok := doc.Statements[i].(*types.StructDefinition)
	require.True(t, ok, "statement %d is %s", i, doc.Statements[i].Kind())
	return st
}

var thriftIndex = map[string]string{
	"api/index.thrift": `include "base.thrift"
namespace go api.index

typedef base.ID UserID

enum Status {
  OK = 1
  FAILED
}

const Status DEFAULT = Status.OK

struct User {
  1: required UserID id
  2: optional base.Profile profile
  3: list<Status> history
}

union Choice {
  1: string a
  2: i32 b
}

exception Failure {
  1: string message
}

service UserService extends base.BaseService {
  User Get(1: i64 id) throws (1: Failure failure) (api.get = "/user")
  oneway void Ping()
} (api.uri_prefix = "/v1")
`,
	"api/base.thrift": `namespace js base.ns
typedef i64 ID
struct Profile {}
service BaseService {}
`,
}

func TestParseThriftDocument(t *testing.T) {
	doc, err := NewParser().Parse("api/index.thrift", DefaultOptions(), thriftIndex)
	require.NoError(t, err)

	assert.Equal(t, "api.index", doc.Namespace)
	assert.Equal(t, "api_index", doc.UnifyNamespace)
	assert.Equal(t, []string{"base.thrift"}, doc.Includes)
	assert.Empty(t, doc.IncludeRefer)
	assert.NotNil(t, doc.IncludeRefer)

	kinds := make([]types.StatementKind, len(doc.Statements))
	for i, st := range doc.Statements {
		kinds[i] = st.Kind()
	}
	assert.Equal(t, []types.StatementKind{
		types.KindTypedef, types.KindEnum, types.KindConst,
		types.KindStruct, types.KindStruct, types.KindStruct,
		types.KindService,
	}, kinds)

	td := doc.Statements[0].(*types.TypedefDefinition)
	assert.Equal(t, types.Identifier{Value: "UserID", NamespaceValue: "api_index.UserID"}, td.Name)
	assert.Equal(t, &types.Identifier{Value: "base.ID", NamespaceValue: "base_ns.ID"}, td.DefinitionType)

	enum := doc.Statements[1].(*types.EnumDefinition)
	require.Len(t, enum.Members, 2)
	require.NotNil(t, enum.Members[0].Initializer)
	assert.Equal(t, int64(1), *enum.Members[0].Initializer)
	assert.Nil(t, enum.Members[1].Initializer)

	constant := doc.Statements[2].(*types.ConstDefinition)
	assert.Equal(t, &types.Identifier{Value: "Status", NamespaceValue: "api_index.Status"}, constant.FieldType)
	assert.Equal(t, &types.Identifier{Value: "Status.OK", NamespaceValue: "api_index.Status.OK"}, constant.Initializer)

	user := structAt(t, doc, 3)
	require.Len(t, user.Fields, 3)
	assert.Equal(t, types.RequirednessRequired, user.Fields[0].Requiredness)
	assert.Equal(t, &types.Identifier{Value: "UserID", NamespaceValue: "api_index.UserID"}, user.Fields[0].FieldType)
	assert.Equal(t, types.RequirednessOptional, user.Fields[1].Requiredness)
	assert.Equal(t, &types.Identifier{Value: "base.Profile", NamespaceValue: "base_ns.Profile"}, user.Fields[1].FieldType)
	assert.Equal(t, &types.ListType{ValueType: &types.Identifier{Value: "Status", NamespaceValue: "api_index.Status"}}, user.Fields[2].FieldType)
	assert.Equal(t, types.Identifier{Value: "id"}, user.Fields[0].Name)

	choice := structAt(t, doc, 4)
	for _, f := range choice.Fields {
		assert.Equal(t, types.RequirednessOptional, f.Requiredness, f.Name.Value)
	}
	assert.Equal(t, "Failure", structAt(t, doc, 5).Name.Value)

	svc := doc.Statements[6].(*types.ServiceDefinition)
	assert.Equal(t, types.Identifier{Value: "UserService", NamespaceValue: "api_index.UserService"}, svc.Name)
	assert.Equal(t, &types.Identifier{Value: "base.BaseService", NamespaceValue: "base_ns.BaseService"}, svc.Extends)
	assert.Equal(t, types.ExtensionConfig{URIPrefix: "/v1"}, svc.ExtensionConfig)
	require.Len(t, svc.Functions, 2)

	get := svc.Functions[0]
	assert.Equal(t, types.Identifier{Value: "Get", NamespaceValue: "api_index.Get"}, get.Name)
	assert.Equal(t, &types.Identifier{Value: "User", NamespaceValue: "api_index.User"}, get.ReturnType)
	assert.Equal(t, types.ExtensionConfig{Method: "GET", URI: "/user"}, get.ExtensionConfig)
	require.Len(t, get.Fields, 1)
	assert.Equal(t, &types.BaseType{Keyword: types.KeywordI64}, get.Fields[0].FieldType)
	require.Len(t, get.Throws, 1)
	assert.Equal(t, &types.Identifier{Value: "Failure", NamespaceValue: "api_index.Failure"}, get.Throws[0].FieldType)

	ping := svc.Functions[1]
	assert.True(t, ping.Oneway)
	assert.Equal(t, &types.BaseType{Keyword: types.KeywordVoid}, ping.ReturnType)
	assert.Empty(t, ping.Fields)
}

func TestParseThriftWithoutNamespaceRefer(t *testing.T) {
	opts := DefaultOptions()
	opts.NamespaceRefer = false
	doc, err := NewParser().Parse("api/index.thrift", opts, thriftIndex)
	require.NoError(t, err)

	assert.Equal(t, "api_index", doc.UnifyNamespace)
	td := doc.Statements[0].(*types.TypedefDefinition)
	assert.Equal(t, types.Identifier{Value: "UserID"}, td.Name)
	assert.Equal(t, &types.Identifier{Value: "base.ID"}, td.DefinitionType)
}

func TestParseThriftFieldExtensionConfig(t *testing.T) {
	src := `struct Foo {
  1: string k1 (api.position = "query")
  2: string k2 (api.key = 'k2')
  3: i32 k3 (api.query = 'key3')
  4: i64 k4 (api.body = "kk4, omitempty")
  5: string k5 (go.tag = 'json:"key5,omitempty"')
  6: i64 k6 (agw.key = 'key6', agw.js_conv = 'str')
  7: string k7 (go.tag = 'json:"-"')
}
`
	doc := parseThrift(t, DefaultOptions(), src)
	fields := structAt(t, doc, 0).Fields

	expected := []types.ExtensionConfig{
		{Position: "query"},
		{},
		{Position: "query", Key: "key3"},
		{Position: "body", Key: "kk4", Tag: "omitempty"},
		{Key: "key5", Tag: "omitempty"},
		{Key: "key6", Tag: "int2str"},
	}
	require.Len(t, fields, len(expected))
	for i, f := range fields {
		assert.Equal(t, expected[i], f.ExtensionConfig, f.Name.Value)
	}

	assert.Equal(t, types.RequirednessDefault, fields[0].Requiredness)
	assert.Equal(t, types.RequirednessOptional, fields[3].Requiredness)
	assert.Equal(t, types.RequirednessOptional, fields[4].Requiredness)
	assert.Equal(t, &types.BaseType{Keyword: types.KeywordString}, fields[5].FieldType)
}

func TestParseThriftIgnoredField(t *testing.T) {
	src := `struct Foo {
  1: string k1
  2: string k2 (go.tag = 'json:"-"')
}
`
	tests := []struct {
		name     string
		opts     func(*Options)
		expected []string
	}{
		{"dropped by default", func(*Options) {}, []string{"k1"}},
		{"kept with dash", func(o *Options) { o.IgnoreGoTagDash = true }, []string{"k1", "k2"}},
		{"kept when go tags are ignored", func(o *Options) { o.IgnoreGoTag = true }, []string{"k1", "k2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.opts(&opts)
			var names []string
			for _, f := range structAt(t, parseThrift(t, opts, src), 0).Fields {
				names = append(names, f.Name.Value)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestParseThriftPathParam(t *testing.T) {
	tests := []struct {
		name  string
		field string
		ok    bool
	}{
		{"bool", "1: bool k1 (api.position = 'path')", false},
		{"double", "1: double k1 (api.position = 'path')", false},
		{"byte", "1: byte k1 (api.position = 'path')", false},
		{"set", "1: set<string> k1 (api.position = 'path')", false},
		{"list", "1: list<string> k1 (api.position = 'path')", false},
		{"map", "1: map<string, string> k1 (api.position = 'path')", false},
		{"old dialect", "1: bool k1 (api.path = 'id')", false},
		{"string", "1: string k1 (api.position = 'path')", true},
		{"integer", "1: i64 k1 (api.position = 'path')", true},
		{"i8", "1: i8 k1 (api.position = 'path')", true},
		{"binary", "1: binary k1 (api.position = 'path')", true},
		{"enum", "1: Numbers k1 (api.position = 'path')", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "enum Numbers { ONE = 1 }\nstruct Foo {\n  " + tt.field + "\n}\n"
			_, err := NewParser().Parse("index.thrift", DefaultOptions(), map[string]string{"index.thrift": src})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "the type of path parameter 'k1' in 'Foo' should be string or integer", err.Error())
			assert.ErrorIs(t, err, idlerrors.ErrInvalidPathParam)
		})
	}
}

const revisedComments = `struct Foo {
  // c1
  1: string k1 // c2
  /* c3 */
  2: string k2 /* c4 */
  // c5
  /* c6 */
  3: string k3 // c7
  /* c8
 c9 */
  4: string k4
  // c10
  5: string k5 /* c11 */
}
`

func commentValues(cs []types.Comment) []interface{} {
	out := make([]interface{}, 0, len(cs))
	for _, c := range cs {
		if c.Kind == types.CommentLine {
			out = append(out, c.Text())
			continue
		}
		out = append(out, c.Lines)
	}
	return out
}

func TestParseThriftReviseComments(t *testing.T) {
	expected := [][]interface{}{
		{"c1", "c2"},
		{[]string{"c3"}, []string{"c4"}},
		{"c5", []string{"c6"}, "c7"},
		{[]string{"c8", " c9"}},
		{"c10", []string{"c11"}},
	}

	p := NewParser()
	opts := DefaultOptions()
	opts.Cache = true
	files := map[string]string{"index.thrift": revisedComments}

	// the second parse reuses the cached tree and must see the same comments
	for i := 0; i < 2; i++ {
		doc, err := p.Parse("index.thrift", opts, files)
		require.NoError(t, err)
		fields := structAt(t, doc, 0).Fields
		require.Len(t, fields, len(expected))
		for j, f := range fields {
			assert.Equal(t, expected[j], commentValues(f.Comments), "pass %d field %s", i, f.Name.Value)
		}
	}
	assert.Equal(t, int64(1), p.Cache().Stats().Hits)
}

func TestParseThriftReviseFunctionComments(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected [][]interface{}
	}{
		{
			name: "trailing comment joins leading",
			src: `service Foo {
  // c1
  void a() // c2
  void b()
}
`,
			expected: [][]interface{}{{"c1", "c2"}, {}},
		},
		{
			name: "mixed spacing and trailing comments",
			src: `service Foo {
  // c1
  BizResponse Biz1(1: BizRequest req) // c2
  /* c3 */
  BizResponse Biz2(1: BizRequest req) /* c4 */
  // c5
  /* c6 */
  BizResponse Biz3(1: BizRequest req) // c7
  /* c8
 c9 */
  BizResponse Biz4(1: BizRequest req)
  BizResponse Biz5(1: BizRequest req)
}
`,
			expected: [][]interface{}{
				{"c1", "c2"},
				{[]string{"c3"}, []string{"c4"}},
				{"c5", []string{"c6"}, "c7"},
				{[]string{"c8", " c9"}},
				{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseThrift(t, DefaultOptions(), tt.src)
			svc := doc.Statements[0].(*types.ServiceDefinition)
			require.Len(t, svc.Functions, len(tt.expected))
			for i, fn := range svc.Functions {
				assert.Equal(t, tt.expected[i], commentValues(fn.Comments), "function %s", fn.Name.Value)
			}
		})
	}
}

func TestParseThriftUnresolved(t *testing.T) {
	doc := parseThrift(t, DefaultOptions(), "struct Foo {\n  1: other.Bar bar\n}\n")
	field := structAt(t, doc, 0).Fields[0]
	id, ok := field.FieldType.(*types.Identifier)
	require.True(t, ok)
	assert.True(t, id.Unresolved)
	assert.Equal(t, "other.Bar", id.Value)
}

func TestParseThriftMissingNamespace(t *testing.T) {
	for _, refer := range []bool{true, false} {
		opts := DefaultOptions()
		opts.NamespaceRefer = refer
		_, err := NewParser().Parse("index.thrift", opts, map[string]string{"index.thrift": "namespace cpp foo\n"})
		require.Error(t, err)
		assert.Equal(t, "a js namespace should be specifed", err.Error())
	}
}

func TestParseThriftNoNamespace(t *testing.T) {
	doc := parseThrift(t, DefaultOptions(), "struct Foo {}\n")
	assert.Equal(t, "", doc.Namespace)
	assert.Equal(t, "root", doc.UnifyNamespace)
	assert.Equal(t, types.Identifier{Value: "Foo", NamespaceValue: "root.Foo"}, structAt(t, doc, 0).Name)
}
