// Package core provides the domain model for the e-commerce revenue loader.
//
// This package is independent of any store, CLI or transport layer. It holds
// the pieces that both the ingestion pipeline and the report engine agree on,
// and can be used by the CLI, the HTTP layer or tests without modification.
//
// # Schema Registry
//
// Entities are registered at init time using [Register]. Each [EntityDef]
// declares the ordered field list of one table together with the builder
// that turns a coerced [Row] into a typed record:
//
//	core.Register(core.EntityDef{
//	    Name:  "customers",
//	    Label: "Customers",
//	    Order: 10,
//	    Fields: []core.FieldSpec{
//	        {Name: "customer_id", Type: core.FieldKey, Key: core.KeyPrimary},
//	        {Name: "email", Type: core.FieldText, Missing: core.MissingDefault},
//	    },
//	    Build:  buildCustomer,
//	    Values: customerValues,
//	})
//
// [All] returns the registered entities in dependency order, parents before
// children, which is the order the ingestion pipeline processes them in.
//
// # Coercion
//
// Raw cell values are converted with the To* functions in convert.go. They
// handle the usual spreadsheet artifacts: currency symbols, thousands
// separators, accounting negatives, many date layouts, Excel formula prefixes
// and integral numeric spellings of identifiers.
//
// # Error Handling
//
// Row-level problems are reported as [RowValidationError] values carrying one
// of the [Reason] codes. Run-level failures use the typed errors in errors.go
// ([SourceReadError], [ValidationFailure], [StoreAccessError],
// [ReportComputeError]); [ExitCode] maps them to process exit codes and
// [MapError] maps any error to a user-facing message with a support code:
//
//   - SRC001-SRC004: Source errors (missing file, unreadable, oversize, header)
//   - VAL001-VAL006: Validation errors (reason codes, strict mode aborts)
//   - STO001-STO004: Store errors (connection, write, query)
//   - RPT001-RPT002: Report errors (missing tables, aggregation)
package core
