package subtitles

import (
	"reflect"
	"strings"
	"testing"
)

const manualVTT = `WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:04.000
Hello and welcome back.

00:00:04.000 --> 00:00:08.500
Today we are shipping something big.

00:00:08.500 --> 00:00:12.000
Let's dive right in.
`

func TestParseVTT_Manual(t *testing.T) {
	t.Parallel()

	tr, err := ParseVTT(strings.NewReader(manualVTT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tr.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(tr.Segments))
	}
	if tr.Segments[0].Start != 1 || tr.Segments[0].End != 4 {
		t.Fatalf("segment 0 timing: %+v", tr.Segments[0])
	}
	if tr.Segments[1].Text != "Today we are shipping something big." {
		t.Fatalf("segment 1 text: %q", tr.Segments[1].Text)
	}
}

// Auto captions carry inline word timestamps and repeat each line across a
// rolling window of cues.
const autoVTT = `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.879 align:start position:0%
hello<00:00:00.640><c> and</c><00:00:01.040><c> welcome</c>

00:00:02.879 --> 00:00:02.889 align:start position:0%
hello and welcome

00:00:02.889 --> 00:00:05.600 align:start position:0%
hello and welcome
today<00:00:03.360><c> we</c><00:00:03.840><c> ship</c>

00:00:05.600 --> 00:00:05.610 align:start position:0%
today we ship

`

func TestParseVTT_AutoDeduplicates(t *testing.T) {
	t.Parallel()

	tr, err := ParseVTT(strings.NewReader(autoVTT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(tr.Segments), tr.Segments)
	}
	if tr.Segments[0].Text != "hello and welcome" {
		t.Fatalf("segment 0: %q", tr.Segments[0].Text)
	}
	if tr.Segments[1].Text != "today we ship" {
		t.Fatalf("segment 1: %q", tr.Segments[1].Text)
	}
	if strings.Contains(tr.Segments[0].Text, "<") {
		t.Fatalf("inline tags not stripped: %q", tr.Segments[0].Text)
	}
}

func TestParseVTT_SegmentsNonOverlapping(t *testing.T) {
	t.Parallel()

	tr, err := ParseVTT(strings.NewReader(autoVTT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i, s := range tr.Segments {
		if s.End <= s.Start {
			t.Fatalf("segment %d has start %v >= end %v", i, s.Start, s.End)
		}
		if i > 0 && s.Start < tr.Segments[i-1].End {
			t.Fatalf("segment %d overlaps previous: %+v / %+v", i, tr.Segments[i-1], s)
		}
	}
}

func TestParseVTT_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := ParseVTT(strings.NewReader(autoVTT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := ParseVTT(strings.NewReader(autoVTT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input produced different transcripts")
	}
}

func TestParseVTTTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "00:00:01.500", want: 1.5},
		{in: "01:02:03.250", want: 3723.25},
		{in: "02:03.250", want: 123.25},
		{in: "nonsense", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseVTTTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseVTTTime(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseVTTTime(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseVTTTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
