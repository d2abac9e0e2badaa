package pipeline

import (
	"context"
	"errors"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/adjacency"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/cache"
	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/cost"
	"github.com/matzehuels/schemadapt/pkg/editscript"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
)

// classification maps package sentinels to error codes, first match wins.
var classification = []struct {
	target error
	code   errs.Code
}{
	{adapt.ErrInvalidGraph, errs.ErrCodeInvalidGraph},
	{bpc.ErrInvalidID, errs.ErrCodeInvalidGraph},
	{bpc.ErrDuplicateBox, errs.ErrCodeInvalidGraph},
	{bpc.ErrDuplicatePin, errs.ErrCodeInvalidGraph},
	{bpc.ErrUnknownBox, errs.ErrCodeInvalidGraph},
	{bpc.ErrUnknownPin, errs.ErrCodeInvalidGraph},
	{editscript.ErrInvalidCorrespondence, errs.ErrCodeInvalidCorrespondence},
	{editscript.ErrInvalidMatrix, errs.ErrCodeInvalidMatrix},
	{adjacency.ErrNotSquare, errs.ErrCodeInvalidMatrix},
	{adjacency.ErrDimensionMismatch, errs.ErrCodeInvalidMatrix},
	{adjacency.ErrInvalidEntry, errs.ErrCodeInvalidMatrix},
	{cost.ErrInvalidConfig, errs.ErrCodeInvalidCostConfig},
	{adapt.ErrInvalidMaxIterations, errs.ErrCodeInvalidOptions},
	{corpus.ErrTemplateNotFound, errs.ErrCodeTemplateNotFound},
	{cache.ErrBackend, errs.ErrCodeBackend},
	{context.DeadlineExceeded, errs.ErrCodeTimeout},
}

// Classify wraps err from operation op in a coded error. Errors that
// already carry a code are returned unchanged; unrecognized errors become
// INTERNAL_ERROR.
func Classify(op string, err error) error {
	if err == nil || errs.GetCode(err) != "" {
		return err
	}
	for _, c := range classification {
		if errors.Is(err, c.target) {
			return errs.Wrap(c.code, err, "%s", op)
		}
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "%s", op)
}
