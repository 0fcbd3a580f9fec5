package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDonationStatusTerminal(t *testing.T) {
	tests := []struct {
		status   DonationStatus
		valid    bool
		terminal bool
	}{
		{DonationStatusPending, true, false},
		{DonationStatusCompleted, true, true},
		{DonationStatusFailed, true, true},
		{DonationStatusCancelled, true, true},
		{DonationStatus("refunded"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestCauseValid(t *testing.T) {
	for _, c := range Causes {
		assert.True(t, c.Valid(), c)
		assert.NotEqual(t, string(c), c.Label())
	}
	assert.False(t, Cause("sports").Valid())
	assert.False(t, Cause("").Valid())
}

func TestDonorDisplayName(t *testing.T) {
	d := &DonationModel{FirstName: "Asha", LastName: "Rao", ShowName: true}
	assert.Equal(t, "Asha Rao", d.DisplayName())

	d.ShowName = false
	assert.Equal(t, AnonymousDonor, d.DisplayName())
}
