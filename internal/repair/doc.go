// Package repair validates and corrects extracted tables, one pipeline per table kind.
//
// Every stage is a pure function over values: a record that cannot be trusted is dropped
// (and counted in the Report), never the whole table. Numeric fields are coerced into
// Number, which keeps "unparsable" distinct from zero.
package repair
