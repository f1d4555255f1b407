// Package engine implements the dialog state machine. It consumes inbound
// events, reads and writes the session store, validates input per step,
// computes the pass code and hands completed dialogs to the recorder.
// Every event terminates in exactly one reply; nothing is dropped
// silently.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/unitpass/passbot/internal/logging"
	"github.com/unitpass/passbot/pkg/domain"
	"github.com/unitpass/passbot/pkg/passcode"
	"github.com/unitpass/passbot/pkg/ports"
	"github.com/unitpass/passbot/pkg/session"
)

// Service messages not covered by language bundles: they are needed
// exactly when no bundle is selected yet, or when the selected one went
// stale.
const (
	msgStart            = "Start the dialog with /start."
	msgChooseLang       = "Choose your language:"
	msgLangsUnavailable = "Could not load languages. Please try again later."
	msgLangNotFound     = "Language not found. Send /start to choose again."
	msgSerialFirst      = "Enter the unit serial number first."
	msgFinished         = "Dialog finished. Send /start to begin a new one."
	msgSaveFailed       = "Could not save your data. Please try again later."
	msgBadDate          = "Enter the date as DD.MM.YYYY:"
)

// LanguageTable is the engine's view of the cached language resources.
type LanguageTable interface {
	FetchAll(ctx context.Context) map[string]domain.LanguageBundle
	Get(code string) (domain.LanguageBundle, bool)
}

// Engine is the dialog state machine.
type Engine struct {
	store    ports.SessionStore
	langs    LanguageTable
	recorder ports.Recorder

	guard  *session.Guard
	hooks  domain.Hooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithGuard serializes event handling per user. Without it, two rapid
// events from the same user may both validate against the same observed
// step and race to write, with the second write winning.
func WithGuard(g *session.Guard) Option {
	return func(e *Engine) {
		e.guard = g
	}
}

// WithHooks registers observability callbacks.
func WithHooks(h domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for the today button and the
// today date. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a dialog engine.
func New(store ports.SessionStore, table LanguageTable, recorder ports.Recorder, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		langs:    table,
		recorder: recorder,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one inbound event and returns the reply to send.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) domain.Reply {
	var reply domain.Reply
	run := func() { reply = e.dispatch(ctx, ev) }

	if e.guard != nil {
		e.guard.Do(ev.User.ID, run)
	} else {
		run()
	}
	return reply
}

func (e *Engine) dispatch(ctx context.Context, ev domain.Event) domain.Reply {
	switch ev.Kind {
	case domain.EventDialogStart:
		return e.handleStart(ctx, ev)
	case domain.EventLanguageChosen:
		return e.handleLanguageChosen(ctx, ev)
	case domain.EventDateChoice:
		return e.handleDateChoice(ctx, ev)
	case domain.EventText:
		return e.handleText(ctx, ev)
	default:
		// Unknown event kinds must not crash the dialog loop.
		e.logger.Warn("unhandled event kind", "kind", string(ev.Kind), "user_id", ev.User.ID)
		return domain.Reply{Text: msgStart}
	}
}

// handleStart refreshes the language table and presents the choices. It
// does not touch the session: the dialog restarts only once a language is
// actually chosen.
func (e *Engine) handleStart(ctx context.Context, ev domain.Event) domain.Reply {
	table := e.langs.FetchAll(ctx)
	if len(table) == 0 {
		return domain.Reply{Text: msgLangsUnavailable}
	}

	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var rows [][]domain.Button
	var row []domain.Button
	for _, code := range codes {
		row = append(row, domain.Button{
			Label: table[code].Name,
			Data:  domain.CallbackLangPrefix + code,
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return domain.Reply{Text: msgChooseLang, Keyboard: rows}
}

// handleLanguageChosen creates or resets the session and prompts for the
// serial number.
func (e *Engine) handleLanguageChosen(ctx context.Context, ev domain.Event) domain.Reply {
	bundle, ok := e.langs.Get(ev.LanguageCode)
	if !ok {
		// Stale or unknown code: restart language selection.
		return domain.Reply{Text: msgLangNotFound}
	}

	sess := domain.NewSession(ev.LanguageCode)
	if err := e.store.Save(ctx, ev.User.ID, sess); err != nil {
		e.logger.Error("failed to save session", "user_id", ev.User.ID, "err", err)
		return domain.Reply{Text: msgStart}
	}
	e.stepChanged(ctx, ev.User.ID, domain.StepNone, domain.StepAwaitingSerial)

	return domain.Reply{Text: bundle.SerialPrompt}
}

// handleDateChoice reacts to the today/manual buttons. Outside
// StepAwaitingDateChoice the buttons are stale and the user is pointed
// back at the serial prompt.
func (e *Engine) handleDateChoice(ctx context.Context, ev domain.Event) domain.Reply {
	sess, err := e.store.Load(ctx, ev.User.ID)
	if err != nil || sess.Step != domain.StepAwaitingDateChoice {
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			e.logger.Error("failed to load session", "user_id", ev.User.ID, "err", err)
		}
		return domain.Reply{Text: msgSerialFirst}
	}

	bundle, ok := e.langs.Get(sess.LanguageCode)
	if !ok {
		return domain.Reply{Text: msgLangNotFound}
	}

	switch ev.DateChoice {
	case domain.DateToday:
		return e.complete(ctx, ev, sess, bundle, passcode.FormatDate(e.now()))
	case domain.DateManual:
		sess.Step = domain.StepAwaitingManualDate
		if err := e.store.Save(ctx, ev.User.ID, sess); err != nil {
			e.logger.Error("failed to save session", "user_id", ev.User.ID, "err", err)
			return domain.Reply{Text: msgStart}
		}
		e.stepChanged(ctx, ev.User.ID, domain.StepAwaitingDateChoice, domain.StepAwaitingManualDate)
		return domain.Reply{Text: manualPrompt(bundle)}
	default:
		return domain.Reply{Text: msgSerialFirst}
	}
}

// handleText routes free text by the current step.
func (e *Engine) handleText(ctx context.Context, ev domain.Event) domain.Reply {
	sess, err := e.store.Load(ctx, ev.User.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			e.logger.Error("failed to load session", "user_id", ev.User.ID, "err", err)
		}
		return domain.Reply{Text: msgStart}
	}

	bundle, ok := e.langs.Get(sess.LanguageCode)
	if !ok {
		return domain.Reply{Text: msgLangNotFound}
	}

	switch sess.Step {
	case domain.StepAwaitingSerial:
		return e.handleSerial(ctx, ev, sess, bundle)
	case domain.StepAwaitingManualDate:
		return e.handleManualDate(ctx, ev, sess, bundle)
	default:
		// Completed, or free text where a button press was expected: the
		// dialog is over, clear it and point at a restart.
		if err := e.store.Delete(ctx, ev.User.ID); err != nil {
			e.logger.Error("failed to clear session", "user_id", ev.User.ID, "err", err)
		}
		e.stepChanged(ctx, ev.User.ID, sess.Step, domain.StepNone)
		return domain.Reply{Text: msgFinished}
	}
}

func (e *Engine) handleSerial(ctx context.Context, ev domain.Event, sess *domain.Session, bundle domain.LanguageBundle) domain.Reply {
	serial, ok := passcode.NormalizeSerial(strings.TrimSpace(ev.Text))
	if !ok {
		// Invalid input leaves the session untouched.
		return domain.Reply{Text: bundle.SerialError}
	}

	sess.SerialNumber = serial
	sess.Step = domain.StepAwaitingDateChoice
	if err := e.store.Save(ctx, ev.User.ID, sess); err != nil {
		e.logger.Error("failed to save session", "user_id", ev.User.ID, "err", err)
		return domain.Reply{Text: msgStart}
	}
	e.stepChanged(ctx, ev.User.ID, domain.StepAwaitingSerial, domain.StepAwaitingDateChoice)

	today := passcode.FormatDate(e.now())
	return domain.Reply{
		Text: bundle.DatePrompt,
		Keyboard: [][]domain.Button{
			{{Label: fmt.Sprintf("%s (%s)", bundle.TodayButton, today), Data: domain.CallbackDateToday}},
			{{Label: bundle.ManualButton, Data: domain.CallbackDateManual}},
		},
	}
}

func (e *Engine) handleManualDate(ctx context.Context, ev domain.Event, sess *domain.Session, bundle domain.LanguageBundle) domain.Reply {
	date, ok := passcode.ValidateDate(strings.TrimSpace(ev.Text))
	if !ok {
		return domain.Reply{Text: manualPrompt(bundle)}
	}
	return e.complete(ctx, ev, sess, bundle, date)
}

// complete is the shared tail of both date-entry paths: compute the code,
// mark the session finished, append the record, reply with the code.
//
// The step is marked Completed before the record is appended and is not
// rolled back if the append fails, so a failed save leaves the user with
// no retry path short of a full restart.
func (e *Engine) complete(ctx context.Context, ev domain.Event, sess *domain.Session, bundle domain.LanguageBundle, date string) domain.Reply {
	code := passcode.Compute(date)
	from := sess.Step

	sess.Date = date
	sess.Step = domain.StepCompleted
	if err := e.store.Save(ctx, ev.User.ID, sess); err != nil {
		e.logger.Error("failed to save session", "user_id", ev.User.ID, "err", err)
		return domain.Reply{Text: msgSaveFailed}
	}
	e.stepChanged(ctx, ev.User.ID, from, domain.StepCompleted)

	day, month, year := passcode.SplitDate(date)
	rec := &domain.PassCodeRecord{
		ChatID:       ev.User.ID,
		FirstName:    ev.User.FirstName,
		LastName:     ev.User.LastName,
		UserName:     ev.User.Username,
		SerialNumber: sess.SerialNumber,
		Date:         date,
		Day:          day,
		Month:        month,
		Year:         year,
		PassCode:     code,
	}

	if err := e.recorder.Append(ctx, rec); err != nil {
		e.logger.Error("failed to append pass-code record", "user_id", ev.User.ID, "err", err)
		if e.hooks.OnPersistError != nil {
			e.hooks.OnPersistError(ctx, ev.User.ID, err)
		}
		return domain.Reply{Text: msgSaveFailed}
	}

	if e.hooks.OnCompleted != nil {
		e.hooks.OnCompleted(ctx, rec)
	}
	return domain.Reply{Text: fmt.Sprintf("%s: %d\n%s", bundle.CodeIs, code, bundle.Closing)}
}

func (e *Engine) stepChanged(ctx context.Context, userID int64, from, to domain.Step) {
	e.logger.Debug("step change", "user_id", userID, "from", from.String(), "to", to.String())
	if e.hooks.OnStepChange != nil {
		e.hooks.OnStepChange(ctx, userID, from, to)
	}
}

// manualPrompt falls back to a fixed prompt when the bundle omits one.
func manualPrompt(bundle domain.LanguageBundle) string {
	if bundle.ManualPrompt != "" {
		return bundle.ManualPrompt
	}
	return msgBadDate
}
