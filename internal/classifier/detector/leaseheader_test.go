package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeaseHeaderDetect(t *testing.T) {
	d := NewLeaseHeader("lease_header_detector")

	tests := []struct {
		name     string
		text     string
		detected bool
	}{
		{"uppercase lease keyword", "LEASE AGREEMENT\n\nThis agreement is made...", true},
		{"lowercase lease keyword", "this lease is entered into by the parties", true},
		{"rental agreement", "RESIDENTIAL RENTAL AGREEMENT\nbetween landlord and tenant", true},
		{"tenancy agreement", "Tenancy Agreement dated January 1", true},
		{"multiple spaces inside phrase", "RENTAL   AGREEMENT", true},
		{"keyword embedded in word", "the release clause and sublease terms", false},
		{"unrelated document", "PURCHASE ORDER\n\nQuantity: 5 units", false},
		{"empty text", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			assert.Equal(t, tt.detected, got.Detected)
			if tt.detected {
				assert.Equal(t, "lease", got.Value)
			} else {
				assert.Empty(t, got.Value)
			}
		})
	}
}

func TestLeaseHeaderWindowBoundary(t *testing.T) {
	t.Run("match ending at character 499 is detected", func(t *testing.T) {
		// 494 chars of filler, then LEASE occupying characters 494-498.
		text := strings.Repeat("a ", 247) + "LEASE"
		assert.True(t, NewLeaseHeader("d").Detect(text).Detected)
	})

	t.Run("match starting at character 500 is ignored", func(t *testing.T) {
		text := strings.Repeat("a ", 250) + "LEASE"
		assert.False(t, NewLeaseHeader("d").Detect(text).Detected)
	})

	t.Run("match straddling the window edge is ignored", func(t *testing.T) {
		// LEASE starts at 496, so only "LEAS" falls inside the window.
		text := strings.Repeat("a ", 248) + "LEASE"
		assert.False(t, NewLeaseHeader("d").Detect(text).Detected)
	})

	t.Run("window is measured in characters not bytes", func(t *testing.T) {
		// 400 multibyte runes then LEASE: inside a 500-rune window even
		// though the byte offset is past 500.
		text := strings.Repeat("é", 400) + " LEASE"
		assert.True(t, NewLeaseHeader("d").Detect(text).Detected)
	})
}

func TestLeaseHeaderName(t *testing.T) {
	assert.Equal(t, "lease_header_detector", NewLeaseHeader("lease_header_detector").Name())
}
