package domain

// EventKind discriminates inbound transport events.
type EventKind string

const (
	EventDialogStart    EventKind = "dialog_start"
	EventLanguageChosen EventKind = "language_chosen"
	EventDateChoice     EventKind = "date_choice"
	EventText           EventKind = "text"
)

// DateChoice is the payload of an EventDateChoice event.
type DateChoice string

const (
	DateToday  DateChoice = "today"
	DateManual DateChoice = "manual"
)

// Callback payloads shared between engine replies and the transport.
// The engine stamps them onto buttons, the transport routes them back.
const (
	CallbackLangPrefix = "lang_"
	CallbackDateToday  = "date_today"
	CallbackDateManual = "date_manual"
)

// User identifies the sender of an event. ID is the stable key sessions
// are stored under; the name fields are optional display data carried
// into the pass-code record.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// Event is one inbound message or button press from the transport.
// Exactly one payload field is meaningful, selected by Kind.
type Event struct {
	Kind         EventKind
	User         User
	LanguageCode string     // EventLanguageChosen
	DateChoice   DateChoice // EventDateChoice
	Text         string     // EventText
}

// Button is one labeled choice; Data is the opaque callback payload the
// transport delivers back when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Reply is the outbound answer to exactly one event. An empty Keyboard
// renders as a plain text message; otherwise each inner slice is one row
// of choice buttons.
type Reply struct {
	Text     string
	Keyboard [][]Button
}
