package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForDispatch(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		code string
		want string
	}{
		{name: "local number gets country code", raw: "5551234", code: "+1", want: "+15551234"},
		{name: "international number keeps its code", raw: "+44 20 7946 0958", code: "+1", want: "+442079460958"},
		{name: "punctuation stripped", raw: "(555) 123-4567", code: "+254", want: "+2545551234567"},
		{name: "country code without plus", raw: "700000001", code: "254", want: "+254700000001"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ForDispatch(tc.raw, tc.code))
		})
	}
}

func TestForImport(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty stays empty", raw: "   ", want: ""},
		{name: "prefix and strip spaces", raw: " 555 1234 ", want: "+15551234"},
		{name: "leading plus untouched", raw: "+44 20 7946", want: "+44207946"},
		{name: "dashes survive import", raw: "555-1234", want: "+1555-1234"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ForImport(tc.raw, "+1"))
		})
	}
}

func TestWire(t *testing.T) {
	assert.Equal(t, "15551234", Wire("+15551234"))
}
