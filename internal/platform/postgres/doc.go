// Package postgres implements the store interfaces on PostgreSQL via
// database/sql with the pgx driver. It owns the SQL for the task listing
// pipeline (filter, sort, paginate), the schema migrations, and the
// mapping from driver errors to store sentinel errors.
package postgres
