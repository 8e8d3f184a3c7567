package contactcsv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wacms/internal/models"
)

func TestSplitRecords(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "quoted comma and escaped quote",
			text: `a,"b, ""c""",d`,
			want: [][]string{{"a", `b, "c"`, "d"}},
		},
		{
			name: "quoted newline stays in cell",
			text: "\"line1\nline2\",x",
			want: [][]string{{"line1\nline2", "x"}},
		},
		{
			name: "all line endings",
			text: "a,1\nb,2\r\nc,3\rd,4",
			want: [][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}},
		},
		{
			name: "bom stripped and blank rows dropped",
			text: "\ufeffa,1\n , \n\nb,2\n",
			want: [][]string{{"a", "1"}, {"b", "2"}},
		},
		{
			name: "cells trimmed",
			text: "  Ana  ,  +1555  ",
			want: [][]string{{"Ana", "+1555"}},
		},
		{
			name: "trailing comma keeps empty cell",
			text: "a,",
			want: [][]string{{"a", ""}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitRecords(tc.text))
		})
	}
}

func TestDetectLayout(t *testing.T) {
	headered := DetectLayout([]string{"Phone", "Full Name", "TAGS"})
	assert.Equal(t, Headered, headered.Mode)
	assert.Equal(t, Columns{Name: 0, Phone: 0, Tags: 2}, headered.Columns)

	positional := DetectLayout([]string{"Ana", "+15551234"})
	assert.Equal(t, Positional, positional.Mode)
	assert.Equal(t, Columns{Name: 0, Phone: 1, Tags: 2}, positional.Columns)
}

func TestParse_Headered(t *testing.T) {
	text := "tags,phone,name\nvip;retail,555 1234,Ana\n,+44 20 7946 0958,\n"

	rows := Parse(text, "+1")

	require.Len(t, rows, 2)
	assert.Equal(t, Row{Name: "Ana", Phone: "+15551234", Tags: []string{"vip", "retail"}}, rows[0])
	assert.Equal(t, Row{Name: UnknownName, Phone: "+442079460958", Tags: []string{}}, rows[1])
}

func TestParse_PositionalStartsAtFirstRow(t *testing.T) {
	rows := Parse("Ana,+15551234,\"a|b ; c\"\nBruno,+15550000", "+1")

	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[0].Name)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0].Tags)
	assert.Equal(t, "Bruno", rows[1].Name)
	assert.Empty(t, rows[1].Tags)
}

func TestParse_DropsRowsWithoutPhone(t *testing.T) {
	rows := Parse("name,phone\nAna,\nBruno,   \nCarla,+15551234", "+1")

	require.Len(t, rows, 1)
	assert.Equal(t, "Carla", rows[0].Name)
}

func TestParse_MissingHeaderColumnFallsBackToPosition(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []Row
	}{
		{
			name: "no tags column reads column 2",
			text: "name,phone,notes\nAnn,+15551234,vip;new\n",
			want: []Row{{Name: "Ann", Phone: "+15551234", Tags: []string{"vip", "new"}}},
		},
		{
			name: "no name column reads column 0",
			text: "phone\n+15551234\n",
			want: []Row{{Name: "+15551234", Phone: "+15551234", Tags: []string{}}},
		},
		{
			name: "no phone column reads column 1",
			text: "name,tags\nAna,555 0101",
			want: []Row{{Name: "Ana", Phone: "+15550101", Tags: []string{"555 0101"}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.text, "+1"))
		})
	}
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse("", "+1"))
	assert.Empty(t, Parse("\ufeff\n\n", "+1"))
}

func TestExport(t *testing.T) {
	contacts := []models.Contact{
		{Name: "Ana", Phone: "+15551234", Tags: []string{"vip", "retail"}},
		{Name: `Doe, "Jr"`, Phone: "+15550000", Tags: nil},
	}

	got := Export(contacts)

	want := "name,phone,tags\r\n" +
		"Ana,+15551234,\"vip, retail\"\r\n" +
		"\"Doe, \"\"Jr\"\"\",+15550000,"
	assert.Equal(t, want, got)
}

func TestExportImport_RoundTrip(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: `Doe, "Jr"`, Phone: "+15551234", Tags: []string{"vip", "retail"}, CreatedAt: time.Now()},
		{ID: "2", Name: "Line\nBreak", Phone: "+442079460958", Tags: []string{}},
		{ID: "3", Name: "Plain", Phone: "+254700000001", Tags: []string{"a|b"}},
	}

	rows := Parse(Export(contacts), "+1")

	require.Len(t, rows, len(contacts))
	for i, c := range contacts {
		assert.Equal(t, c.Name, rows[i].Name)
		assert.Equal(t, c.Phone, rows[i].Phone)
		if c.ID == "3" {
			// "|" is a tag separator on import
			assert.ElementsMatch(t, []string{"a", "b"}, rows[i].Tags)
			continue
		}
		assert.ElementsMatch(t, c.Tags, rows[i].Tags)
	}
}
