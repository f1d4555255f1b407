package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitpass/passbot/internal/engine"
	"github.com/unitpass/passbot/internal/langs"
	"github.com/unitpass/passbot/internal/logging"
	"github.com/unitpass/passbot/pkg/adapters/memory"
	"github.com/unitpass/passbot/pkg/domain"
	"github.com/unitpass/passbot/pkg/session"
)

type stubSource struct {
	bundles map[string]domain.LanguageBundle
	err     error
}

func (s *stubSource) Fetch(ctx context.Context) (map[string]domain.LanguageBundle, error) {
	return s.bundles, s.err
}

type fakeRecorder struct {
	records []*domain.PassCodeRecord
	err     error
}

func (r *fakeRecorder) Append(ctx context.Context, rec *domain.PassCodeRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

type fixture struct {
	engine   *engine.Engine
	store    *memory.Store
	recorder *fakeRecorder
}

var testUser = domain.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Username: "ada"}

func fixedClock() time.Time {
	return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.NewStore(),
		recorder: &fakeRecorder{},
	}
	source := &stubSource{err: errors.New("provider down")} // fallback table by default
	table := langs.NewTable(source, logging.NewNop())

	f.engine = engine.New(f.store, table, f.recorder,
		engine.WithLogger(logging.NewNop()),
		engine.WithGuard(session.NewGuard()),
		engine.WithClock(fixedClock),
	)
	return f
}

func (f *fixture) handle(t *testing.T, ev domain.Event) domain.Reply {
	t.Helper()
	return f.engine.Handle(context.Background(), ev)
}

func event(kind domain.EventKind) domain.Event {
	return domain.Event{Kind: kind, User: testUser}
}

func textEvent(text string) domain.Event {
	ev := event(domain.EventText)
	ev.Text = text
	return ev
}

func langEvent(code string) domain.Event {
	ev := event(domain.EventLanguageChosen)
	ev.LanguageCode = code
	return ev
}

func dateEvent(choice domain.DateChoice) domain.Event {
	ev := event(domain.EventDateChoice)
	ev.DateChoice = choice
	return ev
}

// runToDateChoice advances a fresh dialog to the date-choice step.
func (f *fixture) runToDateChoice(t *testing.T) {
	t.Helper()
	f.handle(t, event(domain.EventDialogStart))
	f.handle(t, langEvent("en"))
	reply := f.handle(t, textEvent("1234AB5678"))
	require.Len(t, reply.Keyboard, 2)
}

func TestDialogStart_PresentsLanguages(t *testing.T) {
	f := newFixture(t)

	reply := f.handle(t, event(domain.EventDialogStart))

	assert.Equal(t, "Choose your language:", reply.Text)
	require.NotEmpty(t, reply.Keyboard)

	var buttons []domain.Button
	for _, row := range reply.Keyboard {
		buttons = append(buttons, row...)
	}
	require.GreaterOrEqual(t, len(buttons), 2)
	assert.Equal(t, "lang_en", buttons[0].Data)

	// No session is created until a language is chosen.
	_, err := f.store.Load(context.Background(), testUser.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLanguageChosen_CreatesSession(t *testing.T) {
	f := newFixture(t)
	f.handle(t, event(domain.EventDialogStart))

	reply := f.handle(t, langEvent("en"))

	assert.Equal(t, "Please enter unit serial number (0000AA9999)", reply.Text)

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingSerial, sess.Step)
	assert.Equal(t, "en", sess.LanguageCode)
}

func TestLanguageChosen_UnknownCode(t *testing.T) {
	f := newFixture(t)
	f.handle(t, event(domain.EventDialogStart))

	reply := f.handle(t, langEvent("xx"))

	assert.Contains(t, reply.Text, "Language not found")
	_, err := f.store.Load(context.Background(), testUser.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestText_NoSession(t *testing.T) {
	f := newFixture(t)

	reply := f.handle(t, textEvent("hello"))

	assert.Equal(t, "Start the dialog with /start.", reply.Text)
	_, err := f.store.Load(context.Background(), testUser.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSerial_InvalidKeepsState(t *testing.T) {
	f := newFixture(t)
	f.handle(t, event(domain.EventDialogStart))
	f.handle(t, langEvent("en"))

	for _, bad := range []string{"123AB5678", "1234ABC567", "garbage"} {
		reply := f.handle(t, textEvent(bad))
		assert.Contains(t, reply.Text, "Wrong unit serial number", bad)
	}

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingSerial, sess.Step)
	assert.Empty(t, sess.SerialNumber)
}

func TestSerial_ValidAdvancesAndNormalizes(t *testing.T) {
	f := newFixture(t)
	f.handle(t, event(domain.EventDialogStart))
	f.handle(t, langEvent("en"))

	reply := f.handle(t, textEvent("1234ab5678"))

	assert.Equal(t, "Please select a date", reply.Text)
	require.Len(t, reply.Keyboard, 2)
	assert.Equal(t, "Today (31.08.2026)", reply.Keyboard[0][0].Label)
	assert.Equal(t, domain.CallbackDateToday, reply.Keyboard[0][0].Data)
	assert.Equal(t, domain.CallbackDateManual, reply.Keyboard[1][0].Data)

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingDateChoice, sess.Step)
	assert.Equal(t, "1234AB5678", sess.SerialNumber)
}

func TestDateChoice_WithoutSerial(t *testing.T) {
	f := newFixture(t)

	reply := f.handle(t, dateEvent(domain.DateToday))
	assert.Equal(t, "Enter the unit serial number first.", reply.Text)

	// Same guard when a session exists but sits on another step.
	f.handle(t, event(domain.EventDialogStart))
	f.handle(t, langEvent("en"))
	reply = f.handle(t, dateEvent(domain.DateToday))
	assert.Equal(t, "Enter the unit serial number first.", reply.Text)
}

func TestEndToEnd_ManualDate(t *testing.T) {
	f := newFixture(t)
	f.runToDateChoice(t)

	reply := f.handle(t, dateEvent(domain.DateManual))
	assert.Equal(t, "Enter the date as DD.MM.YYYY:", reply.Text)

	reply = f.handle(t, textEvent("05.03.2021"))
	assert.Contains(t, reply.Text, "Your pass code is: 2130")
	assert.Contains(t, reply.Text, "Thank you and good luck!")

	require.Len(t, f.recorder.records, 1)
	rec := f.recorder.records[0]
	assert.Equal(t, testUser.ID, rec.ChatID)
	assert.Equal(t, "Ada", rec.FirstName)
	assert.Equal(t, "Lovelace", rec.LastName)
	assert.Equal(t, "ada", rec.UserName)
	assert.Equal(t, "1234AB5678", rec.SerialNumber)
	assert.Equal(t, "05.03.2021", rec.Date)
	assert.Equal(t, 5, rec.Day)
	assert.Equal(t, 3, rec.Month)
	assert.Equal(t, 2021, rec.Year)
	assert.Equal(t, 2130, rec.PassCode)

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCompleted, sess.Step)
	assert.Equal(t, "05.03.2021", sess.Date)
}

func TestEndToEnd_TodayDate(t *testing.T) {
	f := newFixture(t)
	f.runToDateChoice(t)

	reply := f.handle(t, dateEvent(domain.DateToday))

	// 31.08.2026: 2026 + 20*31 + 3*8 = 2670
	assert.Contains(t, reply.Text, "Your pass code is: 2670")
	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, "31.08.2026", f.recorder.records[0].Date)
}

func TestManualDate_InvalidReprompts(t *testing.T) {
	f := newFixture(t)
	f.runToDateChoice(t)
	f.handle(t, dateEvent(domain.DateManual))

	for _, bad := range []string{"31.02.2024", "29.02.2023", "not a date"} {
		reply := f.handle(t, textEvent(bad))
		assert.Equal(t, "Enter the date as DD.MM.YYYY:", reply.Text, bad)
	}

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingManualDate, sess.Step)
	assert.Empty(t, f.recorder.records)
}

func TestCompleted_FurtherTextClearsSession(t *testing.T) {
	f := newFixture(t)
	f.runToDateChoice(t)
	f.handle(t, dateEvent(domain.DateToday))
	require.Len(t, f.recorder.records, 1)

	reply := f.handle(t, textEvent("05.03.2021"))

	assert.Equal(t, "Dialog finished. Send /start to begin a new one.", reply.Text)
	// No duplicate persistence call.
	assert.Len(t, f.recorder.records, 1)

	_, err := f.store.Load(context.Background(), testUser.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestTextAtDateChoice_ResetsDialog(t *testing.T) {
	f := newFixture(t)
	f.runToDateChoice(t)

	reply := f.handle(t, textEvent("some free text"))

	assert.Equal(t, "Dialog finished. Send /start to begin a new one.", reply.Text)
	_, err := f.store.Load(context.Background(), testUser.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPersistFailure_LeavesCompletedWithoutRetryPath(t *testing.T) {
	f := newFixture(t)
	f.recorder.err = errors.New("sink down")
	f.runToDateChoice(t)

	reply := f.handle(t, dateEvent(domain.DateToday))
	assert.Equal(t, "Could not save your data. Please try again later.", reply.Text)
	assert.Empty(t, f.recorder.records)

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCompleted, sess.Step)

	// The only recourse is a restart: more input just clears the dialog.
	reply = f.handle(t, textEvent("31.12.2020"))
	assert.Equal(t, "Dialog finished. Send /start to begin a new one.", reply.Text)
	assert.Empty(t, f.recorder.records)
}

func TestRestartAfterCompletion_OverwritesSession(t *testing.T) {
	f := newFixture(t)
	f.runToDateChoice(t)
	f.handle(t, dateEvent(domain.DateToday))

	f.handle(t, event(domain.EventDialogStart))
	f.handle(t, langEvent("ru"))

	sess, err := f.store.Load(context.Background(), testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingSerial, sess.Step)
	assert.Equal(t, "ru", sess.LanguageCode)
	assert.Empty(t, sess.SerialNumber)
	assert.Empty(t, sess.Date)
}

func TestLanguageFetchFailure_DialogStillWorks(t *testing.T) {
	// The default fixture source always fails; the whole flow must still
	// run end to end on the fallback table.
	f := newFixture(t)

	reply := f.handle(t, event(domain.EventDialogStart))
	require.NotEmpty(t, reply.Keyboard)

	f.handle(t, langEvent("ru"))
	f.handle(t, textEvent("1234АБ5678"))
	f.handle(t, dateEvent(domain.DateManual))
	reply = f.handle(t, textEvent("05.03.2021"))

	assert.Contains(t, reply.Text, "2130")
	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, "1234АБ5678", f.recorder.records[0].SerialNumber)
}

func TestHooks_FireOnTransitionsAndCompletion(t *testing.T) {
	store := memory.NewStore()
	recorder := &fakeRecorder{}
	table := langs.NewTable(&stubSource{err: errors.New("down")}, logging.NewNop())

	var transitions []domain.Step
	var completed int
	eng := engine.New(store, table, recorder,
		engine.WithClock(fixedClock),
		engine.WithHooks(domain.Hooks{
			OnStepChange: func(_ context.Context, _ int64, _, to domain.Step) {
				transitions = append(transitions, to)
			},
			OnCompleted: func(context.Context, *domain.PassCodeRecord) {
				completed++
			},
		}),
	)

	ctx := context.Background()
	eng.Handle(ctx, event(domain.EventDialogStart))
	eng.Handle(ctx, langEvent("en"))
	eng.Handle(ctx, textEvent("1234AB5678"))
	eng.Handle(ctx, dateEvent(domain.DateToday))

	assert.Equal(t, []domain.Step{
		domain.StepAwaitingSerial,
		domain.StepAwaitingDateChoice,
		domain.StepCompleted,
	}, transitions)
	assert.Equal(t, 1, completed)
}

func TestHooks_PersistErrorFires(t *testing.T) {
	store := memory.NewStore()
	recorder := &fakeRecorder{err: errors.New("sink down")}
	table := langs.NewTable(&stubSource{err: errors.New("down")}, logging.NewNop())

	var persistErrs int
	eng := engine.New(store, table, recorder,
		engine.WithClock(fixedClock),
		engine.WithHooks(domain.Hooks{
			OnPersistError: func(context.Context, int64, error) { persistErrs++ },
		}),
	)

	ctx := context.Background()
	eng.Handle(ctx, event(domain.EventDialogStart))
	eng.Handle(ctx, langEvent("en"))
	eng.Handle(ctx, textEvent("1234AB5678"))
	eng.Handle(ctx, dateEvent(domain.DateToday))

	assert.Equal(t, 1, persistErrs)
}

func TestUnknownEventKind_DoesNotCrash(t *testing.T) {
	f := newFixture(t)

	reply := f.handle(t, domain.Event{Kind: "mystery", User: testUser})

	assert.Equal(t, "Start the dialog with /start.", reply.Text)
}
