package thrift

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var thriftLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:#|//)[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Float", Pattern: `[-+]?(?:\d+\.\d*(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+|\.\d+(?:[eE][-+]?\d+)?)`},
	{Name: "Int", Pattern: `[-+]?(?:0[xX][0-9a-fA-F]+|\d+)`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*`},
	{Name: "Punct", Pattern: `[{}()\[\]<>=,;:*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var thriftParser = participle.MustBuild[thriftFile](
	participle.Lexer(thriftLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(16),
)

type thriftFile struct {
	Entries []*thriftEntry `@@*`
}

type thriftEntry struct {
	Tokens []lexer.Token

	Include    *string          `  "include" @String ( "," | ";" )?`
	CppInclude *string          `| "cpp_include" @String ( "," | ";" )?`
	Namespace  *thriftNamespace `| @@`
	Typedef    *thriftTypedef   `| @@`
	Const      *thriftConst     `| @@`
	Enum       *thriftEnum      `| @@`
	Struct     *thriftStruct    `| @@`
	Service    *thriftService   `| @@`
}

type thriftNamespace struct {
	Scope string `"namespace" @( "*" | Ident )`
	Name  string `@( Ident | String ) ( "," | ";" )?`
}

type thriftTypedef struct {
	Type        *thriftType        `"typedef" @@`
	Name        string             `@Ident`
	Annotations *thriftAnnotations `@@? ( "," | ";" )?`
}

type thriftConst struct {
	Type  *thriftType       `"const" @@`
	Name  string            `@Ident "="`
	Value *thriftConstValue `@@ ( "," | ";" )?`
}

type thriftEnum struct {
	Name        string              `"enum" @Ident "{"`
	Members     []*thriftEnumMember `@@* "}"`
	Annotations *thriftAnnotations  `@@?`
}

type thriftEnumMember struct {
	Tokens []lexer.Token

	Name        string             `@Ident`
	Value       *string            `( "=" @Int )?`
	Annotations *thriftAnnotations `@@? ( "," | ";" )?`
}

type thriftStruct struct {
	Kind        string             `@( "struct" | "union" | "exception" )`
	Name        string             `@Ident "{"`
	Fields      []*thriftField     `@@* "}"`
	Annotations *thriftAnnotations `@@?`
}

type thriftField struct {
	Tokens []lexer.Token

	ID           *string            `( @Int ":" )?`
	Requiredness string             `@( "required" | "optional" )?`
	Type         *thriftType        `@@`
	Name         string             `@Ident`
	Default      *thriftConstValue  `( "=" @@ )?`
	Annotations  *thriftAnnotations `@@? ( "," | ";" )?`
}

type thriftService struct {
	Name        string             `"service" @Ident`
	Extends     string             `( "extends" @Ident )? "{"`
	Functions   []*thriftFunction  `@@* "}"`
	Annotations *thriftAnnotations `@@?`
}

type thriftFunction struct {
	Tokens []lexer.Token

	Oneway      bool               `@"oneway"?`
	ReturnType  *thriftType        `@@`
	Name        string             `@Ident "("`
	Args        []*thriftField     `@@* ")"`
	Throws      []*thriftField     `( "throws" "(" @@* ")" )?`
	Annotations *thriftAnnotations `@@? ( "," | ";" )?`
}

type thriftType struct {
	Map  *thriftMapType `  @@`
	List *thriftType    `| "list" "<" @@ ">"`
	Set  *thriftType    `| "set" "<" @@ ">"`
	Name string         `| @Ident`
}

type thriftMapType struct {
	Key   *thriftType `"map" "<" @@ ","`
	Value *thriftType `@@ ">"`
}

type thriftConstValue struct {
	Float  *string          `  @Float`
	Int    *string          `| @Int`
	String *string          `| @String`
	Ident  *string          `| @Ident`
	List   *thriftConstList `| @@`
	Map    *thriftConstMap  `| @@`
}

type thriftConstList struct {
	Open     bool                `@"["`
	Elements []*thriftConstValue `( @@ ( "," | ";" )? )* "]"`
}

type thriftConstMap struct {
	Open    bool               `@"{"`
	Entries []*thriftConstPair `( @@ ( "," | ";" )? )* "}"`
}

type thriftConstPair struct {
	Key   *thriftConstValue `@@ ":"`
	Value *thriftConstValue `@@`
}

type thriftAnnotations struct {
	Items []*thriftAnnotation `"(" @@* ")"`
}

type thriftAnnotation struct {
	Key   string  `@Ident`
	Value *string `( "=" @String )? ( "," | ";" )?`
}
