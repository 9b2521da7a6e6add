package query_test

import (
	"errors"
	"fmt"

	"github.com/asaidimu/go-mongosql/core/query"
	"github.com/asaidimu/go-mongosql/core/schema"
)

func ExampleCompileFilter() {
	filter := schema.MustParse(`{"age": {"$gte": 21}, "profile.city": "Paris"}`)

	sqliteSQL, _ := query.CompileFilter(filter, query.DialectSQLite)
	pgSQL, _ := query.CompileFilter(filter, query.DialectPostgres)
	fmt.Println(sqliteSQL)
	fmt.Println(pgSQL)
	// Output:
	// age >= 21 AND json_extract(profile, '$.city') = 'Paris'
	// age >= 21 AND (profile::json #> {city}) = 'Paris'
}

func ExampleCompileExpression() {
	sql, _ := query.CompileExpression(schema.MustParse(`{"$cond": [{"$gte": ["$age", 18]}, "adult", "minor"]}`), query.DialectSQLite)
	fmt.Println(sql)
	// Output:
	// (CASE WHEN (age >= 18) THEN 'adult' ELSE 'minor' END)
}

func ExampleCompilePipeline() {
	fn, err := query.CompilePipeline(schema.MustParse(`[
		{"$match": {"age": {"$gt": 18}}},
		{"$group": {"_id": "$city", "total": {"$sum": 1}}},
		{"$match": {"total": {"$gt": 1}}}
	]`))
	if err != nil {
		fmt.Println(err)
		return
	}

	sql, _ := fn("users", query.DialectSQLite)
	fmt.Println(sql)
	// Output:
	// SELECT city, (SUM(1)) AS total FROM (SELECT * FROM users WHERE age > 18) GROUP BY city HAVING total > 1
}

func ExampleTranslatePath() {
	fmt.Println(query.TranslatePath("user.orders.0.item", query.DialectSQLite))
	fmt.Println(query.TranslatePath("user.orders.0.item", query.DialectPostgres))
	// Output:
	// json_extract(user, '$.orders[0].item')
	// (user::json #> {orders,0,item})
}

func ExampleCompiler_RegisterExpression() {
	c := query.MustNewCompiler()
	_ = c.RegisterExpression("$lower", query.FunctionOperator("LOWER"))

	sql, _ := c.CompileFilter(schema.D("$expr", schema.D("$eq", []any{schema.D("$lower", "$name"), "alice"})), query.DialectSQLite)
	fmt.Println(sql)
	// Output:
	// ((LOWER(name)) = 'alice')
}

func ExampleNewFilterBuilder() {
	filter := query.NewFilterBuilder().
		Where("age").Gte(18).
		Where("city").In("Paris", "Rome").
		Build()

	sql, _ := query.CompileFilter(filter, query.DialectPostgres)
	fmt.Println(sql)
	// Output:
	// age >= 18 AND city IN ('Paris', 'Rome')
}

func ExampleUnknownOperatorError() {
	_, err := query.CompileFilter(schema.D("age", schema.D("$between", []any{1, 9})), query.DialectSQLite)

	var unknown query.UnknownOperatorError
	if errors.As(err, &unknown) {
		fmt.Println(unknown.Kind, unknown.Tag)
	}
	fmt.Println(errors.Is(err, query.ErrUnknownOperator))
	// Output:
	// filter $between
	// true
}
