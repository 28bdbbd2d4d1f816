// Package repo provides a small generic repository over database/sql.
//
// A Query contributes a WHERE predicate, an optional ORDER BY clause and the
// arguments bound to the predicate's placeholders. A Mapper converts rows of
// one table to values of type T and back. Repository combines the two:
//
//	r, err := repo.New(db, fulldata.Mapper{})
//	sections, err := r.Select(ctx, repo.Ordered(repo.All(), "PosX DESC"))
package repo

// Query selects and orders rows of a table.
type Query interface {
	// Where returns the predicate placed after WHERE. It must not be empty.
	Where() string
	// OrderBy returns the clause placed after ORDER BY, or "" for none.
	OrderBy() string
	// Args returns the values bound to the predicate's placeholders, in order.
	Args() []any
}

type allQuery struct{}

func (allQuery) Where() string   { return "1" }
func (allQuery) OrderBy() string { return "" }
func (allQuery) Args() []any     { return nil }

// All matches every row.
func All() Query {
	return allQuery{}
}

type whereQuery struct {
	pred string
	args []any
}

func (q whereQuery) Where() string   { return q.pred }
func (q whereQuery) OrderBy() string { return "" }
func (q whereQuery) Args() []any     { return q.args }

// Where matches rows satisfying pred, with args bound to its placeholders.
func Where(pred string, args ...any) Query {
	return whereQuery{pred: pred, args: args}
}

type orderedQuery struct {
	Query
	order string
}

func (q orderedQuery) OrderBy() string { return q.order }

// Ordered returns q with its ordering replaced by order. The predicate and
// arguments of q are unchanged.
func Ordered(q Query, order string) Query {
	return orderedQuery{Query: q, order: order}
}
