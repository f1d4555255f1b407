package passcode_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unitpass/passbot/pkg/passcode"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"05.03.2021", 2021 + 20*5 + 3*3}, // 2130
		{"01.01.2000", 2000 + 20 + 3},
		{"31.12.1999", 1999 + 20*31 + 3*12},
		{"29.02.2024", 2024 + 20*29 + 3*2},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			assert.Equal(t, tc.want, passcode.Compute(tc.date))
		})
	}
}

func TestCompute_FormulaOverCalendar(t *testing.T) {
	// Spot-check the formula across every month boundary of one year.
	for month := 1; month <= 12; month++ {
		for _, day := range []int{1, 15, 28} {
			date := fmt.Sprintf("%02d.%02d.2023", day, month)
			assert.Equal(t, 2023+20*day+3*month, passcode.Compute(date), date)
		}
	}
}

func TestSplitDate(t *testing.T) {
	day, month, year := passcode.SplitDate("07.11.1985")
	assert.Equal(t, 7, day)
	assert.Equal(t, 11, month)
	assert.Equal(t, 1985, year)
}
