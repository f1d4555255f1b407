package domain

import "context"

// Hooks defines callbacks for dialog observability. Nil members are
// skipped. Hooks run inline on the handler path and must not block.
type Hooks struct {
	// OnStepChange fires after a session moves between steps, including
	// the reset to StepNone when a finished session is cleared.
	OnStepChange func(ctx context.Context, userID int64, from, to Step)

	// OnCompleted fires after a record was appended successfully.
	OnCompleted func(ctx context.Context, rec *PassCodeRecord)

	// OnPersistError fires when the record sink rejects a completed
	// dialog.
	OnPersistError func(ctx context.Context, userID int64, err error)
}
