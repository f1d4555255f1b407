package domain

// LanguageBundle holds the localized prompt set for one language.
// Bundles are immutable once loaded; a table refresh replaces them
// wholesale rather than mutating in place.
//
// The field tags double as the external column names (text1..text8 in the
// provider's langs table).
type LanguageBundle struct {
	Name         string `yaml:"name"`
	SerialPrompt string `yaml:"serial_prompt"` // text1
	SerialError  string `yaml:"serial_error"`  // text2
	DatePrompt   string `yaml:"date_prompt"`   // text3
	CodeIs       string `yaml:"code_is"`       // text4
	Closing      string `yaml:"closing"`       // text5
	TodayButton  string `yaml:"today_button"`  // text6
	ManualButton string `yaml:"manual_button"` // text7
	ManualPrompt string `yaml:"manual_prompt"` // text8, may be empty
}
