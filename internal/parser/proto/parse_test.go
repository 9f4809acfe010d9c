package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/idlunify/internal/parser"
	"github.com/standardbeagle/idlunify/internal/types"
)

func blockText(t *testing.T, cs []types.Comment) string {
	t.Helper()
	if len(cs) == 0 {
		return ""
	}
	require.Len(t, cs, 1)
	assert.Equal(t, types.CommentBlock, cs[0].Kind)
	return cs[0].Lines[0]
}

func TestParseHeaders(t *testing.T) {
	src := `syntax = "proto3";
package a.b;

import "base.proto";
import public "common/shared.proto";
import weak "google/protobuf/any.proto";

option go_package = "example.com/a/b";
option (api.version) = 2;
`
	doc, err := Parse("a.proto", src)
	require.NoError(t, err)

	assert.True(t, doc.Proto3())
	assert.Equal(t, types.SyntaxProto, doc.Syntax())
	assert.Equal(t, "a.b", doc.Package)
	assert.Equal(t, []Import{
		{Path: "base.proto"},
		{Path: "common/shared.proto", Modifier: "public"},
		{Path: "google/protobuf/any.proto", Modifier: "weak"},
	}, doc.Imports)
	assert.Equal(t, []string{"base.proto", "common/shared.proto"}, doc.Dependencies())
	assert.Equal(t, []types.Annotation{
		{Key: "go_package", Value: "example.com/a/b"},
		{Key: "(api.version)", Value: "2"},
	}, doc.Options)
}

func TestParseDefaultsToProto2(t *testing.T) {
	doc, err := Parse("a.proto", `message A { optional int32 a = 1; }`)
	require.NoError(t, err)
	assert.False(t, doc.Proto3())
	assert.Equal(t, "", doc.Package)
	assert.Equal(t, "A", doc.Messages[0].FullName)
}

func TestParseMessage(t *testing.T) {
	src := `syntax = "proto3";
package pkg;

message Outer {
  option (api.note) = "x";
  reserved 2, 15, 9 to 11;
  reserved "foo", "bar";
  extensions 100 to max;

  message Inner {
    enum Kind { KIND_UNKNOWN = 0; KIND_A = 1; }
    Kind kind = 1;
  }

  int32 id = 1 [(api.position) = "query", (api.key) = "ID"];
  repeated Inner items = 3;
  map<string, Inner> table = 4;
  optional string note = 5;
  .pkg.Outer.Inner absolute = 6;
  other.Remote remote = 7;
  Unknown unknown = 8;
  oneof choice {
    string a = 10;
    Inner b = 11;
  }
}
`
	doc, err := Parse("a.proto", src)
	require.NoError(t, err)
	require.Len(t, doc.Messages, 1)

	outer := doc.Messages[0]
	assert.Equal(t, "pkg.Outer", outer.FullName)
	assert.Equal(t, []types.Annotation{{Key: "(api.note)", Value: "x"}}, outer.Options)
	assert.Equal(t, []string{"choice"}, outer.Oneofs)

	require.Len(t, outer.Nested, 1)
	inner, ok := outer.Nested[0].(*Message)
	require.True(t, ok)
	assert.Equal(t, "pkg.Outer.Inner", inner.FullName)
	require.Len(t, inner.Nested, 1)
	kind := inner.Nested[0].(*Enum)
	assert.Equal(t, "pkg.Outer.Inner.Kind", kind.FullName)
	assert.Len(t, kind.Values, 2)
	assert.Equal(t, ".pkg.Outer.Inner.Kind", inner.Fields[0].ResolvedType)

	fields := map[string]*Field{}
	for _, f := range outer.Fields {
		fields[f.Name] = f
	}
	require.Len(t, fields, 9)

	id := fields["id"]
	assert.Equal(t, 1, id.Number)
	assert.Equal(t, "int32", id.ResolvedType)
	assert.Equal(t, "pkg.Outer", id.Scope())
	assert.Equal(t, []types.Annotation{
		{Key: "(api.position)", Value: "query"},
		{Key: "(api.key)", Value: "ID"},
	}, id.Options)

	assert.Equal(t, "repeated", fields["items"].Label)
	assert.Equal(t, ".pkg.Outer.Inner", fields["items"].ResolvedType)

	table := fields["table"]
	assert.True(t, table.Map)
	assert.Equal(t, "string", table.KeyType)
	assert.Equal(t, ".pkg.Outer.Inner", table.ResolvedType)

	assert.Equal(t, "optional", fields["note"].Label)
	assert.Equal(t, ".pkg.Outer.Inner", fields["absolute"].ResolvedType)
	assert.Equal(t, ".other.Remote", fields["remote"].ResolvedType)
	assert.Equal(t, "Unknown", fields["unknown"].ResolvedType)

	assert.Equal(t, "choice", fields["a"].Oneof)
	assert.Equal(t, "choice", fields["b"].Oneof)
	assert.Equal(t, ".pkg.Outer.Inner", fields["b"].ResolvedType)

	assert.ElementsMatch(t, []string{"pkg.Outer", "pkg.Outer.Inner", "pkg.Outer.Inner.Kind"}, doc.FullTypeNames())
	assert.Equal(t, []string{"Outer"}, doc.TypeNames())
}

func TestParseEnumAndService(t *testing.T) {
	src := `syntax = "proto3";
package pkg;

enum Status {
  option allow_alias = true;
  OK = 0;
  FAILED = -1 [deprecated = true];
}

message Req {}
message Resp {}

service Biz {
  option (api.uri_prefix) = "/v1";
  rpc Get(Req) returns (Resp) {
    option (api.get) = "/api/get";
  }
  rpc Watch(stream Req) returns (stream remote.Event);
  rpc Legacy(Req) returns (Resp) {
    option (google.api.http) = {
      post: "/legacy"
      body: "*"
    };
  }
}
`
	doc, err := Parse("a.proto", src)
	require.NoError(t, err)

	require.Len(t, doc.Enums, 1)
	status := doc.Enums[0]
	assert.Equal(t, []types.Annotation{{Key: "allow_alias", Value: "true"}}, status.Options)
	require.Len(t, status.Values, 2)
	assert.Equal(t, int64(-1), status.Values[1].Number)
	assert.Equal(t, []types.Annotation{{Key: "deprecated", Value: "true"}}, status.Values[1].Options)

	require.Len(t, doc.Services, 1)
	svc := doc.Services[0]
	assert.Equal(t, "pkg.Biz", svc.FullName)
	assert.Equal(t, []types.Annotation{{Key: "(api.uri_prefix)", Value: "/v1"}}, svc.Options)
	require.Len(t, svc.Methods, 3)

	get := svc.Methods[0]
	assert.Equal(t, "pkg.Biz.Get", get.FullName)
	assert.Equal(t, ".pkg.Req", get.ResolvedRequestType)
	assert.Equal(t, ".pkg.Resp", get.ResolvedResponseType)
	assert.Equal(t, []types.Annotation{{Key: "(api.get)", Value: "/api/get"}}, get.Options)

	watch := svc.Methods[1]
	assert.True(t, watch.StreamRequest)
	assert.True(t, watch.StreamResponse)
	assert.Equal(t, ".remote.Event", watch.ResolvedResponseType)
	assert.Empty(t, watch.Options)

	assert.Equal(t, []types.Annotation{
		{Key: "(google.api.http).post", Value: "/legacy"},
		{Key: "(google.api.http).body", Value: "*"},
	}, svc.Methods[2].Options)
}

func TestParseComments(t *testing.T) {
	src := `syntax = "proto3"; // not a leading comment

// Foo is
// documented
message Foo {
  // c1
  string k1 = 1; // c2
  /* c3 */
  string k2 = 2; /* c4 */

  string k3 = 3;
  /**
   * c5
   */
  string k4 = 4;
  string k5 = 5; string k6 = 6; // c6
  /*c7*/
  string k7 = 7;
}
`
	doc, err := Parse("a.proto", src)
	require.NoError(t, err)
	foo := doc.Messages[0]

	assert.Equal(t, "Foo is\ndocumented", blockText(t, foo.Comments))
	assert.Equal(t, 3, foo.Comments[0].Loc.Start.Line)
	assert.Equal(t, 4, foo.Comments[0].Loc.End.Line)

	got := map[string]string{}
	for _, f := range foo.Fields {
		got[f.Name] = blockText(t, f.Comments)
	}
	assert.Equal(t, map[string]string{
		"k1": "c1",
		"k2": "c3",
		"k3": "",
		"k4": "c5",
		"k5": "",
		"k6": "c6",
		"k7": "c7",
	}, got)
}

func TestParseTrailingOnly(t *testing.T) {
	src := "message Foo {\n  int32 a = 1; // about a\n  int32 b = 2;\n}\n"
	doc, err := Parse("a.proto", src)
	require.NoError(t, err)
	fields := doc.Messages[0].Fields
	assert.Equal(t, "about a", blockText(t, fields[0].Comments))
	assert.Empty(t, fields[1].Comments)
}

func TestWeakResolve(t *testing.T) {
	declared := map[string]bool{"a.b.Msg": true, "a.b.Msg.Inner": true, "a.Top": true}

	tests := []struct {
		name     string
		ref      string
		scope    string
		expected string
	}{
		{"scalar", "int64", "a.b.Msg", "int64"},
		{"absolute", ".x.Y", "a.b.Msg", ".x.Y"},
		{"nested", "Inner", "a.b.Msg", ".a.b.Msg.Inner"},
		{"sibling", "Msg", "a.b.Other", ".a.b.Msg"},
		{"ancestor", "Top", "a.b.Msg", ".a.Top"},
		{"partially qualified", "Msg.Inner", "a.b.Other", ".a.b.Msg.Inner"},
		{"qualified foreign", "c.D", "a.b.Msg", ".c.D"},
		{"bare foreign", "Remote", "a.b.Msg", "Remote"},
		{"no package", "Top", "", "Top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weakResolve(tt.ref, tt.scope, declared))
		})
	}
}

func TestBaseKeyword(t *testing.T) {
	for name, keyword := range map[string]string{
		"int32": types.KeywordI32, "sfixed32": types.KeywordI32,
		"uint64": types.KeywordI64, "fixed64": types.KeywordI64,
		"float": types.KeywordDouble, "bytes": types.KeywordBinary,
		"bool": types.KeywordBool, "string": types.KeywordString,
	} {
		got, ok := BaseKeyword(name)
		assert.True(t, ok, name)
		assert.Equal(t, keyword, got, name)
	}
	_, ok := BaseKeyword("Message")
	assert.False(t, ok)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("a.proto", "syntax = \"proto3\";\nmessage Foo {\n  int32 = 1;\n}\n")
	require.Error(t, err)

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
	assert.Greater(t, perr.Column, 0)
}
