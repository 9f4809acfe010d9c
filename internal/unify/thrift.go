package unify

import (
	"github.com/standardbeagle/idlunify/internal/comments"
	"github.com/standardbeagle/idlunify/internal/extension"
	"github.com/standardbeagle/idlunify/internal/parser/thrift"
	"github.com/standardbeagle/idlunify/internal/symbollinker"
	"github.com/standardbeagle/idlunify/internal/types"
)

type thriftAssembler struct {
	r    *symbollinker.ThriftResolver
	opts Options
}

func assembleThrift(rc *symbollinker.ResolutionContext, opts Options) (*types.UnifyDocument, error) {
	r, err := symbollinker.NewThriftResolver(rc, opts.NamespaceRefer)
	if err != nil {
		return nil, err
	}
	doc := rc.Entry.Document.(*thrift.Document)
	a := &thriftAssembler{r: r, opts: opts}

	out := &types.UnifyDocument{
		Namespace:      rc.Namespace,
		UnifyNamespace: rc.UnifyNamespace,
		Includes:       append([]string{}, doc.Includes...),
		IncludeRefer:   map[string]string{},
		Statements:     []types.Statement{},
	}
	for _, td := range doc.Typedefs {
		out.Statements = append(out.Statements, a.typedef(td))
	}
	for _, e := range doc.Enums {
		out.Statements = append(out.Statements, a.enum(e))
	}
	for _, c := range doc.Consts {
		out.Statements = append(out.Statements, a.constant(c))
	}
	for _, s := range doc.Structs {
		st, err := a.structure(s)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, st)
	}
	for _, s := range doc.Services {
		out.Statements = append(out.Statements, a.service(s))
	}
	return out, nil
}

func (a *thriftAssembler) typedef(td *thrift.Typedef) *types.TypedefDefinition {
	return &types.TypedefDefinition{
		Name:           a.r.Name(td.Name),
		DefinitionType: a.r.Refer(td.Type),
		Comments:       cloneComments(td.Comments),
		Annotations:    cloneAnnotations(td.Annotations),
		Loc:            td.Loc,
	}
}

func (a *thriftAssembler) enum(e *thrift.Enum) *types.EnumDefinition {
	def := &types.EnumDefinition{
		Name:        a.r.Name(e.Name),
		Members:     make([]*types.EnumMember, 0, len(e.Members)),
		Comments:    cloneComments(e.Comments),
		Annotations: cloneAnnotations(e.Annotations),
		Loc:         e.Loc,
	}
	for _, m := range e.Members {
		member := &types.EnumMember{
			Name:        types.Identifier{Value: m.Name},
			Comments:    cloneComments(m.Comments),
			Annotations: cloneAnnotations(m.Annotations),
			Loc:         m.Loc,
		}
		if m.Value != nil {
			v := *m.Value
			member.Initializer = &v
		}
		def.Members = append(def.Members, member)
	}
	comments.Revise(comments.Members(def.Members), true)
	return def
}

func (a *thriftAssembler) constant(c *thrift.Const) *types.ConstDefinition {
	return &types.ConstDefinition{
		Name:        a.r.Name(c.Name),
		FieldType:   a.r.Refer(c.Type),
		Initializer: a.r.ReferConst(c.Value),
		Comments:    cloneComments(c.Comments),
		Loc:         c.Loc,
	}
}

// structure converts struct, union and exception alike. Union fields are optional.
func (a *thriftAssembler) structure(s *thrift.Struct) (*types.StructDefinition, error) {
	def := &types.StructDefinition{
		Name:        a.r.Name(s.Name),
		Fields:      make([]*types.FieldDefinition, 0, len(s.Fields)),
		Comments:    cloneComments(s.Comments),
		Annotations: cloneAnnotations(s.Annotations),
		Loc:         s.Loc,
	}

	for _, f := range s.Fields {
		field := a.field(f)
		if s.Kind == thrift.KindUnion {
			field.Requiredness = types.RequirednessOptional
		}

		c, err := fieldConfig(extension.DialectThrift, f.Name, s.Name, field.FieldType, f.Annotations, a.opts)
		if err != nil {
			return nil, err
		}
		field.ExtensionConfig = c
		if hasTag(c, extension.TagOmitEmpty) {
			field.Requiredness = types.RequirednessOptional
		}
		def.Fields = append(def.Fields, field)
	}

	// revise before dropping ignored fields
	comments.Revise(comments.Fields(def.Fields), true)
	kept := def.Fields[:0]
	for _, f := range def.Fields {
		if applyTags(f, a.opts) {
			kept = append(kept, f)
		}
	}
	def.Fields = kept
	return def, nil
}

func (a *thriftAssembler) field(f *thrift.Field) *types.FieldDefinition {
	field := &types.FieldDefinition{
		ID:           f.ID,
		Name:         types.Identifier{Value: f.Name},
		FieldType:    a.r.Refer(f.Type),
		Requiredness: f.Requiredness,
		Comments:     cloneComments(f.Comments),
		Annotations:  cloneAnnotations(f.Annotations),
		Loc:          f.Loc,
	}
	if f.Default != nil {
		field.DefaultValue = a.r.ReferConst(f.Default)
	}
	return field
}

func (a *thriftAssembler) service(s *thrift.Service) *types.ServiceDefinition {
	def := &types.ServiceDefinition{
		Name:            a.r.Name(s.Name),
		Functions:       make([]*types.FunctionDefinition, 0, len(s.Functions)),
		Comments:        cloneComments(s.Comments),
		Annotations:     cloneAnnotations(s.Annotations),
		ExtensionConfig: extension.ServiceConfig(extension.DialectThrift, s.Annotations, a.opts.IgnoreGoTag),
		Loc:             s.Loc,
	}
	if s.Extends != "" {
		extends := a.r.ReferIdentifier(types.Identifier{Value: s.Extends})
		def.Extends = &extends
	}

	for _, fn := range s.Functions {
		def.Functions = append(def.Functions, a.function(fn))
	}
	comments.Revise(comments.Functions(def.Functions), false)
	return def
}

func (a *thriftAssembler) function(fn *thrift.Function) *types.FunctionDefinition {
	def := &types.FunctionDefinition{
		Name:            a.r.Name(fn.Name),
		ReturnType:      a.r.Refer(fn.ReturnType),
		Fields:          make([]*types.FieldDefinition, 0, len(fn.Args)),
		Throws:          make([]*types.FieldDefinition, 0, len(fn.Throws)),
		Oneway:          fn.Oneway,
		Comments:        cloneComments(fn.Comments),
		Annotations:     cloneAnnotations(fn.Annotations),
		ExtensionConfig: extension.FunctionConfig(extension.DialectThrift, fn.Annotations, a.opts.IgnoreGoTag),
		Loc:             fn.Loc,
	}
	for _, arg := range fn.Args {
		def.Fields = append(def.Fields, a.field(arg))
	}
	for _, t := range fn.Throws {
		def.Throws = append(def.Throws, a.field(t))
	}
	return def
}
