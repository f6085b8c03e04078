package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the repositories branch on.
const (
	PGUniqueViolation      = "23505"
	PGCheckViolation       = "23514"
	PGForeignKeyViolation  = "23503"
	PGSerializationFailure = "40001"
)

var pgReasons = map[string]string{
	PGUniqueViolation:      "unique_violation",
	PGCheckViolation:       "check_violation",
	PGForeignKeyViolation:  "foreign_key_violation",
	PGSerializationFailure: "serialization_failure",
}

// PGError is the driver-neutral part of a Postgres error. Both pgx and
// lib/pq errors can reach the API, since goose runs migrations through pq.
type PGError struct {
	Code       string
	Reason     string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// Postgres finds a Postgres error anywhere in err's chain.
func Postgres(err error) (PGError, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return PGError{
			Code:       pgxErr.Code,
			Reason:     pgReasons[pgxErr.Code],
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return PGError{
			Code:       string(pqErr.Code),
			Reason:     pgReasons[string(pqErr.Code)],
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}, true
	}
	return PGError{}, false
}

// Dump flattens err into log fields: the message, the typed code, every
// wrapped layer and, when present, the Postgres diagnostics.
func Dump(err error) map[string]any {
	if err == nil {
		return nil
	}
	fields := map[string]any{"error": err.Error()}
	if te := As(err); te != nil {
		fields["error_code"] = te.Code()
	}
	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	fields["error_chain"] = chain

	if pg, ok := Postgres(err); ok {
		fields["pg_code"] = pg.Code
		setIf(fields, "pg_reason", pg.Reason)
		setIf(fields, "pg_constraint", pg.Constraint)
		setIf(fields, "pg_table", pg.Table)
		setIf(fields, "pg_column", pg.Column)
		setIf(fields, "pg_detail", pg.Detail)
		setIf(fields, "pg_message", pg.Message)
	}
	return fields
}

func setIf(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
