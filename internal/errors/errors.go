// Package errors provides error handling for the reducer.
//
// It re-exports github.com/cockroachdb/errors so that every package wraps,
// annotates and inspects errors the same way:
//
//	if err := store.SubtractQuantity(ctx, id, amount); err != nil {
//	    return errors.Wrapf(err, "subtract %s", id)
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
)

// User-facing hints
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	FlattenHints = crdb.FlattenHints
)

// Inspection
var Is = crdb.Is
