package umapsgd

import "context"

// ProgressCallback is invoked at every epoch boundary after all updates of
// the epoch have been applied. epoch is the 0-based index of the epoch that
// just finished. Returning an error aborts the run.
//
// The embedding must not be retained or modified after the call returns.
type ProgressCallback interface {
	OnEpochEnd(ctx context.Context, epoch int, emb *Embedding) error
}

// CallbackFunc adapts a function to ProgressCallback.
type CallbackFunc func(ctx context.Context, epoch int, emb *Embedding) error

// OnEpochEnd calls f.
func (f CallbackFunc) OnEpochEnd(ctx context.Context, epoch int, emb *Embedding) error {
	return f(ctx, epoch, emb)
}

// Callbacks fans one epoch boundary out to several callbacks in order.
type Callbacks []ProgressCallback

// OnEpochEnd calls every callback and stops at the first error.
func (cs Callbacks) OnEpochEnd(ctx context.Context, epoch int, emb *Embedding) error {
	for _, c := range cs {
		if c == nil {
			continue
		}
		if err := c.OnEpochEnd(ctx, epoch, emb); err != nil {
			return err
		}
	}
	return nil
}
