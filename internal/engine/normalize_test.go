package engine

import (
	"errors"
	"testing"
)

func TestNormalizeJSON3(t *testing.T) {
	body := []byte(`{"events":[
		{"tStartMs":1500,"dDurationMs":2000,"segs":[{"utf8":"hello "},{"utf8":"world"}]},
		{"tStartMs":3500,"dDurationMs":500},
		{"tStartMs":4000,"dDurationMs":1000,"segs":[{"utf8":"\n"}]},
		{"tStartMs":5000,"segs":[{"utf8":" again "}]}
	]}`)
	segs, err := NormalizeJSON3(body)
	if err != nil {
		t.Fatal(err)
	}
	want := []Segment{
		{Text: "hello world", Start: 1.5, Duration: 2.0},
		{Text: "again", Start: 5.0, Duration: 0},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(segs), len(want), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("seg[%d] = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestNormalizeJSON3Unsupported(t *testing.T) {
	for name, body := range map[string]string{
		"not json":  "<html>",
		"no events": `{"wireMagic":"pb3"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeJSON3([]byte(body))
			if !errors.Is(err, ErrFormatUnsupported) {
				t.Errorf("expected ErrFormatUnsupported, got %v", err)
			}
		})
	}
}

func TestNormalizeEntries(t *testing.T) {
	d := 1.25
	segs := NormalizeEntries([]Entry{
		{Text: " first ", Start: 0, Duration: &d},
		{Text: "   ", Start: 1},
		{Text: "second", Start: 2},
		{Text: "second", Start: 3},
	})
	want := []Segment{
		{Text: "first", Start: 0, Duration: 1.25},
		{Text: "second", Start: 2, Duration: 0},
		{Text: "second", Start: 3, Duration: 0},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %+v", segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("seg[%d] = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestNormalizeNegativeStartClamped(t *testing.T) {
	json3, err := NormalizeJSON3([]byte(`{"events":[{"tStartMs":-250,"dDurationMs":1000,"segs":[{"utf8":"early"}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(json3) != 1 || json3[0].Start != 0 || json3[0].Duration != 1 {
		t.Errorf("json3 = %+v, want start 0 duration 1", json3)
	}

	neg := -0.5
	entries := NormalizeEntries([]Entry{{Text: "early", Start: -1.5, Duration: &neg}})
	if len(entries) != 1 || entries[0].Start != 0 || entries[0].Duration != 0 {
		t.Errorf("entries = %+v, want start 0 duration 0", entries)
	}

	timed, err := NormalizeTimedText([]byte(`<transcript><text start="-2" dur="1">early</text></transcript>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(timed) != 1 || timed[0].Start != 0 {
		t.Errorf("timedtext = %+v, want start 0", timed)
	}
}

func TestNormalizeTimedText(t *testing.T) {
	t.Run("format 1", func(t *testing.T) {
		body := []byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
			`<text start="0.5" dur="1.5">It&amp;#39;s &lt;i&gt;fine&lt;/i&gt;</text>` +
			`<text start="2" dur="1"></text>` +
			`<text start="3.25">tail</text></transcript>`)
		segs, err := NormalizeTimedText(body)
		if err != nil {
			t.Fatal(err)
		}
		want := []Segment{
			{Text: "It's fine", Start: 0.5, Duration: 1.5},
			{Text: "tail", Start: 3.25, Duration: 0},
		}
		if len(segs) != len(want) {
			t.Fatalf("got %+v", segs)
		}
		for i := range want {
			if segs[i] != want[i] {
				t.Errorf("seg[%d] = %+v, want %+v", i, segs[i], want[i])
			}
		}
	})

	t.Run("srv3", func(t *testing.T) {
		body := []byte(`<timedtext format="3"><body>` +
			`<p t="1000" d="2500"><s>hello</s><s> there</s></p>` +
			`<p t="4000" d="100"></p></body></timedtext>`)
		segs, err := NormalizeTimedText(body)
		if err != nil {
			t.Fatal(err)
		}
		if len(segs) != 1 || segs[0] != (Segment{Text: "hello there", Start: 1, Duration: 2.5}) {
			t.Errorf("got %+v", segs)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := NormalizeTimedText([]byte("{not xml")); !errors.Is(err, ErrFormatUnsupported) {
			t.Errorf("expected ErrFormatUnsupported, got %v", err)
		}
	})
}

func TestNormalizeVTT(t *testing.T) {
	body := []byte("WEBVTT\nKind: captions\nLanguage: en\n\n" +
		"00:00:01.000 --> 00:00:03.500 align:start position:0%\n" +
		"<c>hello</c> <00:00:02.000><c>world</c>\n\n" +
		"2\n00:01:02.250 --> 00:01:04.000\nsecond &amp; last\nline\n")
	segs, err := NormalizeVTT(body)
	if err != nil {
		t.Fatal(err)
	}
	want := []Segment{
		{Text: "hello world", Start: 1, Duration: 2.5},
		{Text: "second & last line", Start: 62.25, Duration: 1.75},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %+v", segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("seg[%d] = %+v, want %+v", i, segs[i], want[i])
		}
	}

	if _, err := NormalizeVTT([]byte("WEBVTT\n\n")); !errors.Is(err, ErrFormatUnsupported) {
		t.Errorf("expected ErrFormatUnsupported for cue-less body, got %v", err)
	}
}

func TestParseCueTime(t *testing.T) {
	tests := map[string]float64{
		"00:00:01.500": 1.5,
		"01:02.250":    62.25,
		"01:00:00,000": 3600,
	}
	for in, want := range tests {
		got, err := parseCueTime(in)
		if err != nil {
			t.Errorf("parseCueTime(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseCueTime(%q) = %v, want %v", in, got, want)
		}
	}
}
