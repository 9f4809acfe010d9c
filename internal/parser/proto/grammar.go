package proto

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var protoLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Float", Pattern: `[-+]?(?:\d+\.\d*(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+|\.\d+(?:[eE][-+]?\d+)?)`},
	{Name: "Int", Pattern: `[-+]?(?:0[xX][0-9a-fA-F]+|\d+)`},
	{Name: "Ident", Pattern: `\.?[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*`},
	{Name: "Punct", Pattern: `[{}()\[\]<>=,;:/]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var protoParser = participle.MustBuild[protoFile](
	participle.Lexer(protoLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(16),
)

type protoFile struct {
	Entries []*protoEntry `@@*`
}

type protoEntry struct {
	Tokens []lexer.Token

	Syntax  *string       `  "syntax" "=" @String ";"`
	Edition *string       `| "edition" "=" @String ";"`
	Package *string       `| "package" @Ident ";"`
	Import  *protoImport  `| @@`
	Option  *protoOption  `| "option" @@ ";"`
	Message *protoMessage `| @@`
	Enum    *protoEnum    `| @@`
	Service *protoService `| @@`
	Extend  *protoExtend  `| @@`
	Empty   bool          `| @";"`
}

type protoImport struct {
	Modifier string `"import" @( "weak" | "public" )?`
	Path     string `@String ";"`
}

// protoOption covers `name = value`. Parenthesized extension names keep their
// parentheses: (google.api.http).get
type protoOption struct {
	Name  string            `@( "(" Ident ")" Ident? | Ident )`
	Value *protoOptionValue `"=" @@`
}

type protoOptionValue struct {
	String    []string        `  @String+`
	Number    *string         `| @( Float | Int )`
	Ident     *string         `| @Ident`
	Aggregate *protoAggregate `| @@`
	List      *protoList      `| @@`
}

type protoAggregate struct {
	Open   bool                   `@"{"`
	Fields []*protoAggregateField `@@* "}"`
}

type protoAggregateField struct {
	Name  string            `@( Ident | "[" Ident ( "/" Ident )* "]" )`
	Value *protoOptionValue `( ":" @@ | @@ ) ( "," | ";" )?`
}

type protoList struct {
	Open   bool                `@"["`
	Values []*protoOptionValue `( @@ ","? )* "]"`
}

type protoMessage struct {
	Name    string               `"message" @Ident "{"`
	Entries []*protoMessageEntry `@@* "}"`
}

type protoMessageEntry struct {
	Tokens []lexer.Token

	Enum     *protoEnum     `  @@`
	Message  *protoMessage  `| @@`
	Option   *protoOption   `| "option" @@ ";"`
	Oneof    *protoOneof    `| @@`
	Extend   *protoExtend   `| @@`
	Reserved *protoReserved `| @@`
	MapField *protoMapField `| @@`
	Field    *protoField    `| @@`
	Empty    bool           `| @";"`
}

type protoField struct {
	Tokens []lexer.Token

	Label   string         `@( "optional" | "required" | "repeated" )?`
	Type    string         `@Ident`
	Name    string         `@Ident "="`
	Number  string         `@Int`
	Options []*protoOption `( "[" @@ ( "," @@ )* "]" )? ";"`
}

type protoMapField struct {
	KeyType   string         `"map" "<" @Ident ","`
	ValueType string         `@Ident ">"`
	Name      string         `@Ident "="`
	Number    string         `@Int`
	Options   []*protoOption `( "[" @@ ( "," @@ )* "]" )? ";"`
}

type protoOneof struct {
	Name    string             `"oneof" @Ident "{"`
	Entries []*protoOneofEntry `@@* "}"`
}

type protoOneofEntry struct {
	Tokens []lexer.Token

	Option *protoOption `  "option" @@ ";"`
	Field  *protoField  `| @@`
	Empty  bool         `| @";"`
}

// protoReserved covers both reserved and extensions ranges; only the keyword is kept
type protoReserved struct {
	Keyword string         `@( "reserved" | "extensions" )`
	Items   []string       `@( Int | String | Ident | "," )+`
	Options []*protoOption `( "[" @@ ( "," @@ )* "]" )? ";"`
}

type protoExtend struct {
	Extendee string        `"extend" @Ident "{"`
	Fields   []*protoField `( @@ | ";" )* "}"`
}

type protoEnum struct {
	Name    string            `"enum" @Ident "{"`
	Entries []*protoEnumEntry `@@* "}"`
}

type protoEnumEntry struct {
	Tokens []lexer.Token

	Option   *protoOption    `  "option" @@ ";"`
	Reserved *protoReserved  `| @@`
	Value    *protoEnumValue `| @@`
	Empty    bool            `| @";"`
}

type protoEnumValue struct {
	Name    string         `@Ident "="`
	Number  string         `@Int`
	Options []*protoOption `( "[" @@ ( "," @@ )* "]" )? ";"`
}

type protoService struct {
	Name    string               `"service" @Ident "{"`
	Entries []*protoServiceEntry `@@* "}"`
}

type protoServiceEntry struct {
	Tokens []lexer.Token

	Option *protoOption `  "option" @@ ";"`
	Method *protoMethod `| @@`
	Empty  bool         `| @";"`
}

type protoMethod struct {
	Name           string         `"rpc" @Ident "("`
	StreamRequest  bool           `@"stream"?`
	RequestType    string         `@Ident ")"`
	StreamResponse bool           `"returns" "(" @"stream"?`
	ResponseType   string         `@Ident ")"`
	Options        []*protoOption `( "{" ( "option" @@ ";" | ";" )* "}" ";"? | ";" )`
}
