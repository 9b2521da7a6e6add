package query

import (
	"github.com/asaidimu/go-mongosql/core/schema"
)

// PipelineBuilder provides a fluent API for assembling aggregation pipelines.
// Build returns the stage list accepted by CompilePipeline.
type PipelineBuilder struct {
	stages []any
}

// NewPipelineBuilder creates a new, empty pipeline builder.
func NewPipelineBuilder() *PipelineBuilder {
	return &PipelineBuilder{}
}

// Build returns a copy of the stages added so far.
func (pb *PipelineBuilder) Build() []any {
	out := make([]any, len(pb.stages))
	copy(out, pb.stages)
	return out
}

// Clone returns a builder with the same stages. Stage arguments are shared.
func (pb *PipelineBuilder) Clone() *PipelineBuilder {
	return &PipelineBuilder{stages: pb.Build()}
}

// Reset removes every stage.
func (pb *PipelineBuilder) Reset() *PipelineBuilder {
	pb.stages = nil
	return pb
}

// Stage appends an arbitrary stage.
func (pb *PipelineBuilder) Stage(tag string, args any) *PipelineBuilder {
	if !IsOperatorTag(tag) {
		tag = Sentinel + tag
	}
	pb.stages = append(pb.stages, schema.D(tag, args))
	return pb
}

// Project appends a $project stage.
func (pb *PipelineBuilder) Project(fields schema.Document) *PipelineBuilder {
	return pb.Stage("$project", fields)
}

// Match appends a $match stage. filter may be a Document, a FilterBuilder
// result or a raw SQL fragment.
func (pb *PipelineBuilder) Match(filter any) *PipelineBuilder {
	return pb.Stage("$match", filter)
}

// Group appends a $group stage keyed by id. A nil id groups the whole relation.
func (pb *PipelineBuilder) Group(id any, accumulators schema.Document) *PipelineBuilder {
	doc := make(schema.Document, 0, len(accumulators)+1)
	doc = append(doc, schema.Field{Key: "_id", Value: id})
	doc = append(doc, accumulators...)
	return pb.Stage("$group", doc)
}

// Sort appends a $sort stage. Keys are compiled as expressions.
func (pb *PipelineBuilder) Sort(keys schema.Document) *PipelineBuilder {
	return pb.Stage("$sort", keys)
}

// SortAsc appends a $sort stage ordering by the column field, ascending.
func (pb *PipelineBuilder) SortAsc(field string) *PipelineBuilder {
	return pb.Sort(schema.D(Sentinel+field, 1))
}

// SortDesc appends a $sort stage ordering by the column field, descending.
func (pb *PipelineBuilder) SortDesc(field string) *PipelineBuilder {
	return pb.Sort(schema.D(Sentinel+field, -1))
}

// Skip appends a $skip stage.
func (pb *PipelineBuilder) Skip(n int) *PipelineBuilder {
	return pb.Stage("$skip", n)
}

// Limit appends a $limit stage.
func (pb *PipelineBuilder) Limit(n int) *PipelineBuilder {
	return pb.Stage("$limit", n)
}

// Count appends a $count stage.
func (pb *PipelineBuilder) Count(alias string) *PipelineBuilder {
	return pb.Stage("$count", alias)
}

// Compile compiles the stages with c, or with the default Compiler when c is
// nil.
func (pb *PipelineBuilder) Compile(c *Compiler) (PipelineFunc, error) {
	if c == nil {
		c = Default()
	}
	return c.CompilePipeline(pb.Build())
}

// FilterBuilder assembles filter documents. Conditions are kept in the order
// they are added and joined with AND when compiled.
type FilterBuilder struct {
	doc schema.Document
}

// NewFilterBuilder creates a new, empty filter builder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Build returns the filter document.
func (fb *FilterBuilder) Build() schema.Document {
	out := make(schema.Document, len(fb.doc))
	copy(out, fb.doc)
	return out
}

// Where begins a condition on field.
func (fb *FilterBuilder) Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{parent: fb, field: field}
}

// And adds {$and: [filters...]}.
func (fb *FilterBuilder) And(filters ...schema.Document) *FilterBuilder {
	return fb.add("$and", documentsToList(filters))
}

// Or adds {$or: [filters...]}.
func (fb *FilterBuilder) Or(filters ...schema.Document) *FilterBuilder {
	return fb.add("$or", documentsToList(filters))
}

// Nor adds {$nor: [filters...]}.
func (fb *FilterBuilder) Nor(filters ...schema.Document) *FilterBuilder {
	return fb.add("$nor", documentsToList(filters))
}

// Not adds {$not: filter}.
func (fb *FilterBuilder) Not(filter schema.Document) *FilterBuilder {
	return fb.add("$not", filter)
}

// Expr adds {$expr: expr}.
func (fb *FilterBuilder) Expr(expr any) *FilterBuilder {
	return fb.add("$expr", expr)
}

func (fb *FilterBuilder) add(key string, value any) *FilterBuilder {
	fb.doc = append(fb.doc, schema.Field{Key: key, Value: value})
	return fb
}

func documentsToList(docs []schema.Document) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}

// FilterConditionBuilder completes a condition started with Where.
type FilterConditionBuilder struct {
	parent *FilterBuilder
	field  string
}

// Eq adds {field: value}.
func (fcb *FilterConditionBuilder) Eq(value any) *FilterBuilder {
	return fcb.parent.add(fcb.field, value)
}

func (fcb *FilterConditionBuilder) Ne(value any) *FilterBuilder  { return fcb.Op("$ne", value) }
func (fcb *FilterConditionBuilder) Gt(value any) *FilterBuilder  { return fcb.Op("$gt", value) }
func (fcb *FilterConditionBuilder) Gte(value any) *FilterBuilder { return fcb.Op("$gte", value) }
func (fcb *FilterConditionBuilder) Lt(value any) *FilterBuilder  { return fcb.Op("$lt", value) }
func (fcb *FilterConditionBuilder) Lte(value any) *FilterBuilder { return fcb.Op("$lte", value) }

func (fcb *FilterConditionBuilder) In(values ...any) *FilterBuilder  { return fcb.Op("$in", values) }
func (fcb *FilterConditionBuilder) Nin(values ...any) *FilterBuilder { return fcb.Op("$nin", values) }

func (fcb *FilterConditionBuilder) Like(pattern string) *FilterBuilder {
	return fcb.Op("$like", pattern)
}

func (fcb *FilterConditionBuilder) ILike(pattern string) *FilterBuilder {
	return fcb.Op("$ilike", pattern)
}

func (fcb *FilterConditionBuilder) Regex(pattern string) *FilterBuilder {
	return fcb.Op("$regex", pattern)
}

func (fcb *FilterConditionBuilder) Size(n int) *FilterBuilder { return fcb.Op("$size", n) }

func (fcb *FilterConditionBuilder) Exists() *FilterBuilder    { return fcb.Op("$exists", true) }
func (fcb *FilterConditionBuilder) NotExists() *FilterBuilder { return fcb.Op("$exists", false) }

// Op adds {field: {tag: value}} for any filter operator, registered ones
// included.
func (fcb *FilterConditionBuilder) Op(tag string, value any) *FilterBuilder {
	if !IsOperatorTag(tag) {
		tag = Sentinel + tag
	}
	return fcb.parent.add(fcb.field, schema.D(tag, value))
}
