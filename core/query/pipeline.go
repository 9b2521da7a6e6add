package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
	"go.uber.org/zap"
)

// PipelineFunc renders a compiled pipeline against a source relation.
type PipelineFunc func(relation string, d Dialect) (string, error)

type pipelineStage struct {
	tag  string
	args any
}

// pipelineState is threaded through the stage fold. GROUP BY and HAVING are
// only appended once every stage has run.
type pipelineState struct {
	sql     string
	grouped bool
	groupBy string
	having  string
}

type stageFunc func(c *Compiler, st *pipelineState, args any, d Dialect) error

var pipelineStages = map[string]stageFunc{
	"$project": projectStage,
	"$match":   matchStage,
	"$group":   groupStage,
	"$sort":    sortStage,
	"$skip":    offsetStage("$skip", "OFFSET"),
	"$limit":   offsetStage("$limit", "LIMIT"),
	"$count":   countStage,
}

// CompilePipeline checks the shape of every stage and returns a function that
// renders the pipeline for a relation and dialect. Stages with unknown tags are
// skipped with a warning, or rejected when the Compiler was built with
// WithStrictStages.
func (c *Compiler) CompilePipeline(stages any) (PipelineFunc, error) {
	parsed, err := c.parseStages(stages)
	if err != nil {
		return nil, err
	}
	return func(relation string, d Dialect) (string, error) {
		return c.observe("pipeline", stages, d, func() (string, error) {
			return c.foldPipeline(parsed, relation, d)
		})
	}, nil
}

func (c *Compiler) parseStages(stages any) ([]pipelineStage, error) {
	var list []any
	switch s := schema.Normalize(stages).(type) {
	case nil:
	case []any:
		list = s
	default:
		return nil, malformed("pipeline", "stages must be a list, got %T", stages)
	}

	parsed := make([]pipelineStage, 0, len(list))
	for i, raw := range list {
		doc, ok := schema.Normalize(raw).(schema.Document)
		if !ok {
			return nil, malformed("pipeline", "stage %d must be an object, got %T", i, raw)
		}
		f, ok := doc.Single()
		if !ok || !IsOperatorTag(f.Key) {
			return nil, malformed("pipeline", "stage %d must hold exactly one stage operator, got keys %v", i, doc.Keys())
		}
		if _, known := pipelineStages[f.Key]; !known {
			if c.strictStages {
				return nil, UnknownOperatorError{Kind: KindStage, Tag: f.Key}
			}
			c.logger.Warn("Ignoring unknown pipeline stage", zap.String("stage", f.Key), zap.Int("index", i))
			continue
		}
		parsed = append(parsed, pipelineStage{tag: f.Key, args: f.Value})
	}
	return parsed, nil
}

func (c *Compiler) foldPipeline(stages []pipelineStage, relation string, d Dialect) (string, error) {
	st := &pipelineState{sql: "SELECT * FROM " + relation}
	for i, stage := range stages {
		if err := pipelineStages[stage.tag](c, st, stage.args, d); err != nil {
			return "", fmt.Errorf("stage %d (%s): %w", i, stage.tag, err)
		}
	}
	if st.groupBy != "" {
		st.sql += " GROUP BY " + st.groupBy
	}
	if st.having != "" {
		st.sql += " " + st.having
	}
	return st.sql, nil
}

func stageDocument(tag string, args any) (schema.Document, error) {
	doc, ok := schema.Normalize(args).(schema.Document)
	if !ok {
		return nil, malformed(tag, "argument must be an object, got %T", args)
	}
	return doc, nil
}

// projectStage selects per key: a field reference aliased to the key, an
// expression aliased to the key, or the bare key when the value is 1 or true.
// Other values are left out. An empty selection selects *.
func projectStage(c *Compiler, st *pipelineState, args any, d Dialect) error {
	doc, err := stageDocument("$project", args)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(doc))
	for _, f := range doc {
		switch v := schema.Normalize(f.Value).(type) {
		case string:
			if IsOperatorTag(v) {
				cols = append(cols, TranslatePath(strings.TrimPrefix(v, Sentinel), d)+" AS "+f.Key)
			}
		case schema.Document:
			expr, err := c.Expression(v, d)
			if err != nil {
				return err
			}
			cols = append(cols, expr+" AS "+f.Key)
		default:
			if schema.IsOne(v) {
				cols = append(cols, f.Key)
			}
		}
	}
	if len(cols) == 0 {
		cols = append(cols, "*")
	}
	st.sql = "SELECT " + strings.Join(cols, ", ") + " FROM (" + st.sql + ")"
	return nil
}

// matchStage filters with WHERE, or with HAVING once a group stage has run.
// A later match after a group replaces the previous HAVING clause.
func matchStage(c *Compiler, st *pipelineState, args any, d Dialect) error {
	cond, err := c.Filter(args, d)
	if err != nil {
		return err
	}
	if cond == "" {
		return nil
	}
	if st.grouped {
		st.having = "HAVING " + cond
		return nil
	}
	st.sql += " WHERE " + cond
	return nil
}

// groupStage selects the _id key followed by every other key as an aliased
// expression. A null _id aggregates the whole relation.
func groupStage(c *Compiler, st *pipelineState, args any, d Dialect) error {
	doc, err := stageDocument("$group", args)
	if err != nil {
		return err
	}
	id, ok := doc.Get("_id")
	if !ok {
		return malformed("$group", "missing _id")
	}

	var cols []string
	groupBy := ""
	if id != nil {
		groupBy, err = c.Expression(id, d)
		if err != nil {
			return err
		}
		cols = append(cols, groupBy)
	}
	for _, f := range doc {
		if f.Key == "_id" {
			continue
		}
		expr, err := c.Expression(f.Value, d)
		if err != nil {
			return err
		}
		cols = append(cols, expr+" AS "+f.Key)
	}
	if len(cols) == 0 {
		return malformed("$group", "nothing to select: _id is null and no accumulators are given")
	}

	st.sql = "SELECT " + strings.Join(cols, ", ") + " FROM (" + st.sql + ")"
	st.grouped = true
	st.groupBy = groupBy
	return nil
}

// sortStage compiles each key as an expression, so plain names render as
// string literals; use "$name" to sort by a column.
func sortStage(c *Compiler, st *pipelineState, args any, d Dialect) error {
	doc, err := stageDocument("$sort", args)
	if err != nil {
		return err
	}
	if len(doc) == 0 {
		return malformed("$sort", "no sort keys")
	}

	clauses := make([]string, len(doc))
	for i, f := range doc {
		key, err := c.Expression(f.Key, d)
		if err != nil {
			return err
		}
		dir := "DESC"
		if schema.IsOne(f.Value) {
			dir = "ASC"
		}
		clauses[i] = key + " " + dir
	}
	st.sql += " ORDER BY " + strings.Join(clauses, ", ")
	return nil
}

func offsetStage(tag, keyword string) stageFunc {
	return func(c *Compiler, st *pipelineState, args any, d Dialect) error {
		if !schema.IsNumber(args) {
			return malformed(tag, "argument must be a number, got %T", args)
		}
		n, err := FormatScalar(args)
		if err != nil {
			return err
		}
		st.sql += " " + keyword + " " + n
		return nil
	}
}

func countStage(c *Compiler, st *pipelineState, args any, d Dialect) error {
	alias, ok := args.(string)
	if !ok || alias == "" {
		return malformed("$count", "argument must be a non-empty field name")
	}
	st.sql = "SELECT COUNT(*) AS " + alias + " FROM (" + st.sql + ")"
	return nil
}
