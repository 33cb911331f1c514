package pdfburger

import (
	"slices"

	"github.com/lvillar/pdfburger/result"
)

// CollectResult is the outcome of a successful Collect: the files to merge,
// in merge order, and the warnings raised while finding them.
type CollectResult struct {
	Files    []string `json:"files" yaml:"files"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

func (c CollectResult) add(e Entry) CollectResult {
	return CollectResult{
		Files:    slices.Concat(c.Files, e.Paths),
		Warnings: slices.Concat(c.Warnings, e.Warnings),
	}
}

// Collect resolves inputs from left to right and concatenates their files
// and warnings. The first fatal input stops the fold; later inputs are not
// examined. A successful fold that found no files fails with
// ErrNothingToMerge.
func (b *Burger) Collect(inputs []string, recursive bool) result.Result[CollectResult] {
	folded := result.Fold(inputs, result.Success(CollectResult{}),
		func(acc CollectResult, raw string) result.Result[CollectResult] {
			resolved := b.resolver.Resolve(raw, recursive)
			if err := resolved.Err(); err != nil {
				b.logger.Debug("input rejected", "input", raw, "error", err)
			}
			return result.Map(resolved, func(e Entry) CollectResult {
				b.logger.Debug("input resolved", "input", raw, "files", len(e.Paths), "warnings", len(e.Warnings))
				for _, w := range e.Warnings {
					b.logger.Debug("collect warning", "input", raw, "warning", w)
				}
				return acc.add(e)
			})
		})

	return result.Bind(folded, func(cr CollectResult) result.Result[CollectResult] {
		if len(cr.Files) == 0 {
			return result.Failure[CollectResult](ErrNothingToMerge)
		}
		return result.Success(cr)
	})
}

// Collect resolves inputs with a default Burger.
func Collect(inputs []string, recursive bool) result.Result[CollectResult] {
	return New().Collect(inputs, recursive)
}
