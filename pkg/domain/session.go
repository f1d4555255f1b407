package domain

// Step identifies the position of a user's dialog in the state machine.
type Step int

const (
	// StepNone means no dialog is active. A user with no stored session
	// is treated exactly the same as one stored at StepNone.
	StepNone Step = iota

	// StepAwaitingSerial waits for the unit serial number.
	StepAwaitingSerial

	// StepAwaitingDateChoice waits for the today/manual date buttons.
	StepAwaitingDateChoice

	// StepAwaitingManualDate waits for a typed DD.MM.YYYY date.
	StepAwaitingManualDate

	// StepCompleted is the sink state: the code was delivered (or the
	// final save failed) and only a fresh dialog-start restarts the flow.
	StepCompleted
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepAwaitingSerial:
		return "awaiting_serial"
	case StepAwaitingDateChoice:
		return "awaiting_date_choice"
	case StepAwaitingManualDate:
		return "awaiting_manual_date"
	case StepCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Session tracks one user's progress through the dialog.
//
// Fields populate monotonically as steps advance: SerialNumber is set when
// the step reaches StepAwaitingDateChoice, Date when it reaches
// StepCompleted. LanguageCode is chosen once per dialog and not changed
// until a restart overwrites the whole session. The engine is the sole
// writer; everything else treats sessions as read-only snapshots.
type Session struct {
	Step         Step   `json:"step"`
	LanguageCode string `json:"language_code"`
	SerialNumber string `json:"serial_number,omitempty"`
	Date         string `json:"date,omitempty"`
}

// NewSession creates a fresh session positioned at the serial-number
// prompt for the chosen language.
func NewSession(languageCode string) *Session {
	return &Session{
		Step:         StepAwaitingSerial,
		LanguageCode: languageCode,
	}
}
