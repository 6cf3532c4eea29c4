package outline

import (
	"context"
	"fmt"
)

// setState writes target's glyph on row when it differs from the current one.
func (e *Engine) setState(ctx context.Context, row int, target State) error {
	start, end, ok := glyphSpan(e.buf.Line(row))
	if !ok {
		return nil
	}
	return e.replaceSpan(ctx, row, start, end, target.Glyph())
}

// Toggle writes target on row. With recurseDown every descendant checkbox is
// set to target, depth first. With recurseUp the owner of row is updated and
// the update chains to its own owner.
func (e *Engine) Toggle(ctx context.Context, row int, target State, recurseUp, recurseDown bool) error {
	if target < Unchecked || target >= Error {
		return fmt.Errorf("%w: cannot write %s", ErrInvalidState, target)
	}
	if err := e.validRow(row); err != nil {
		return err
	}
	if !e.hasCheckbox(row) {
		return nil
	}
	e.logger.Debug("toggle", "line", row+1, "target", target.String())
	if err := e.setState(ctx, row, target); err != nil {
		return err
	}
	if recurseDown {
		children, _ := e.FindChildren(row, KindCheckbox)
		for _, c := range children {
			if err := e.Toggle(ctx, c, target, false, true); err != nil {
				return err
			}
		}
	}
	if recurseUp {
		if p := e.FindOwner(row, KindCheckbox); p != NoParent {
			return e.Update(ctx, p, true)
		}
	}
	return nil
}

// Update recomputes row from its children: the checkbox glyph when it is
// stale and the summary token always. Children carrying a summary are
// updated in turn. With parentUpdate the owner of row is updated as well.
// Lines with neither checkbox nor summary, and leaves, are left alone.
func (e *Engine) Update(ctx context.Context, row int, parentUpdate bool) error {
	if err := e.validRow(row); err != nil {
		return err
	}
	line := e.buf.Line(row)
	hasBox := e.hasCheckbox(row)
	hasSum := HasSummary(line)
	if !hasBox && !hasSum {
		return nil
	}
	total, checked := e.RecalcSummary(row)
	if total == 0 {
		return nil
	}
	state := aggregate(total, checked)
	e.logger.Debug("update", "line", row+1, "children", total, "checked", checked, "state", state.String())

	if hasBox && e.State(row) != state {
		if err := e.setState(ctx, row, state); err != nil {
			return err
		}
	}
	if hasSum {
		if _, err := e.rewriteSummary(ctx, row, checked, total); err != nil {
			return err
		}
	}

	children, _ := e.FindChildren(row, KindCheckbox)
	for _, c := range children {
		if !HasSummary(e.buf.Line(c)) {
			continue
		}
		if err := e.Update(ctx, c, false); err != nil {
			return err
		}
	}

	if parentUpdate {
		if p := e.FindOwner(row, KindCheckbox); p != NoParent {
			return e.Update(ctx, p, true)
		}
	}
	return nil
}

// RecalcAll updates every line carrying a summary, bottom of the document
// first, so nested summaries settle before their ancestors read them.
func (e *Engine) RecalcAll(ctx context.Context) error {
	var rows []int
	for r := 0; r < e.buf.LineCount(); r++ {
		if HasSummary(e.buf.Line(r)) {
			rows = append(rows, r)
		}
	}
	e.logger.Debug("recalc all", "summaries", len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if err := e.Update(ctx, rows[i], false); err != nil {
			return err
		}
	}
	return nil
}
