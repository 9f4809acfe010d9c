package unify

import (
	"github.com/standardbeagle/idlunify/internal/extension"
	"github.com/standardbeagle/idlunify/internal/parser/proto"
	"github.com/standardbeagle/idlunify/internal/symbollinker"
	"github.com/standardbeagle/idlunify/internal/types"
)

// requestArg is the name of the single argument given to every rpc method
const requestArg = "request"

type protoAssembler struct {
	r      *symbollinker.ProtoResolver
	opts   Options
	proto3 bool
}

func assembleProto(rc *symbollinker.ResolutionContext, opts Options) (*types.UnifyDocument, error) {
	r := symbollinker.NewProtoResolver(rc)
	doc := rc.Entry.Document.(*proto.Document)
	a := &protoAssembler{r: r, opts: opts, proto3: doc.Proto3()}

	out := &types.UnifyDocument{
		Namespace:      rc.Namespace,
		UnifyNamespace: rc.UnifyNamespace,
		Includes:       make([]string, 0, len(doc.Imports)),
		IncludeRefer:   rc.IncludeRefer,
		Statements:     []types.Statement{},
	}
	for _, imp := range doc.Imports {
		out.Includes = append(out.Includes, imp.Path)
	}

	for _, m := range doc.Messages {
		st, err := a.message(m, 0)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, st)
	}
	for _, e := range doc.Enums {
		out.Statements = append(out.Statements, a.enum(e, 0))
	}
	for _, s := range doc.Services {
		out.Statements = append(out.Statements, a.service(s))
	}
	return out, nil
}

func (a *protoAssembler) message(m *proto.Message, depth int) (*types.StructDefinition, error) {
	def := &types.StructDefinition{
		Name:        a.r.Name(m.Name, m.FullName, depth),
		Fields:      make([]*types.FieldDefinition, 0, len(m.Fields)),
		Comments:    cloneComments(m.Comments),
		Annotations: cloneAnnotations(m.Options),
		Loc:         m.Loc,
	}

	for _, f := range m.Fields {
		field, err := a.field(f, m.Name, depth)
		if err != nil {
			return nil, err
		}
		if applyTags(field, a.opts) {
			def.Fields = append(def.Fields, field)
		}
	}

	for _, n := range m.Nested {
		switch v := n.(type) {
		case *proto.Message:
			nested, err := a.message(v, depth+1)
			if err != nil {
				return nil, err
			}
			def.Nested = append(def.Nested, nested)
		case *proto.Enum:
			def.Nested = append(def.Nested, a.enum(v, depth+1))
		}
	}
	return def, nil
}

func (a *protoAssembler) field(f *proto.Field, owner string, depth int) (*types.FieldDefinition, error) {
	scope := f.Scope()
	resolved := f.ResolvedType
	if resolved == "" {
		resolved = f.Type
	}

	var fieldType types.FieldType
	switch {
	case f.Map:
		fieldType = &types.MapType{
			KeyType:   a.r.ResolveType(f.KeyType, scope),
			ValueType: a.r.ResolveType(resolved, scope),
		}
	case f.Label == "repeated":
		fieldType = &types.ListType{ValueType: a.r.ResolveType(resolved, scope)}
	default:
		fieldType = a.r.ResolveType(resolved, scope)
	}

	c, err := fieldConfig(extension.DialectProto, f.Name, owner, fieldType, f.Options, a.opts)
	if err != nil {
		return nil, err
	}
	return &types.FieldDefinition{
		ID:              f.Number,
		Name:            a.r.Name(f.Name, f.FullName, depth+1),
		FieldType:       fieldType,
		Requiredness:    a.requiredness(f, c),
		Comments:        cloneComments(f.Comments),
		Annotations:     cloneAnnotations(f.Options),
		ExtensionConfig: c,
		Loc:             f.Loc,
	}, nil
}

// requiredness follows the label of the field: proto2 fields are required
// unless labelled optional, proto3 fields are optional unless labelled
// required. Oneof members are always optional. Extension tags win over both.
func (a *protoAssembler) requiredness(f *proto.Field, c types.ExtensionConfig) types.Requiredness {
	req := types.RequirednessOptional
	switch {
	case f.Oneof != "":
	case a.proto3:
		if f.Label == "required" {
			req = types.RequirednessRequired
		}
	case f.Label != "optional":
		req = types.RequirednessRequired
	}

	switch {
	case hasTag(c, extension.TagRequired):
		req = types.RequirednessRequired
	case hasTag(c, extension.TagOmitEmpty):
		req = types.RequirednessOptional
	}
	return req
}

func (a *protoAssembler) enum(e *proto.Enum, depth int) *types.EnumDefinition {
	def := &types.EnumDefinition{
		Name:        a.r.Name(e.Name, e.FullName, depth),
		Members:     make([]*types.EnumMember, 0, len(e.Values)),
		Comments:    cloneComments(e.Comments),
		Annotations: cloneAnnotations(e.Options),
		Loc:         e.Loc,
	}
	for _, v := range e.Values {
		n := v.Number
		def.Members = append(def.Members, &types.EnumMember{
			Name:        types.Identifier{Value: v.Name},
			Initializer: &n,
			Comments:    cloneComments(v.Comments),
			Annotations: cloneAnnotations(v.Options),
			Loc:         v.Loc,
		})
	}
	return def
}

func (a *protoAssembler) service(s *proto.Service) *types.ServiceDefinition {
	def := &types.ServiceDefinition{
		Name:            a.r.Name(s.Name, s.FullName, 0),
		Functions:       make([]*types.FunctionDefinition, 0, len(s.Methods)),
		Comments:        cloneComments(s.Comments),
		Annotations:     cloneAnnotations(s.Options),
		ExtensionConfig: extension.ServiceConfig(extension.DialectProto, s.Options, a.opts.IgnoreGoTag),
		Loc:             s.Loc,
	}
	for _, m := range s.Methods {
		def.Functions = append(def.Functions, a.method(m, s.FullName))
	}
	return def
}

func (a *protoAssembler) method(m *proto.Method, scope string) *types.FunctionDefinition {
	request, response := m.ResolvedRequestType, m.ResolvedResponseType
	if request == "" {
		request = m.RequestType
	}
	if response == "" {
		response = m.ResponseType
	}

	return &types.FunctionDefinition{
		Name:       a.r.Name(m.Name, m.FullName, 1),
		ReturnType: a.r.ResolveType(response, scope),
		Fields: []*types.FieldDefinition{{
			ID:        1,
			Name:      types.Identifier{Value: requestArg},
			FieldType: a.r.ResolveType(request, scope),
			Comments:  []types.Comment{},
		}},
		Throws:          []*types.FieldDefinition{},
		StreamRequest:   m.StreamRequest,
		StreamResponse:  m.StreamResponse,
		Comments:        cloneComments(m.Comments),
		Annotations:     cloneAnnotations(m.Options),
		ExtensionConfig: extension.FunctionConfig(extension.DialectProto, m.Options, a.opts.IgnoreGoTag),
		Loc:             m.Loc,
	}
}
