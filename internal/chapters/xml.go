package chapters

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// wire schema: Matroska <Chapters><EditionEntry><ChapterAtom>... as
// mkvmerge/mkvextract read and write it.
type mkvChapters struct {
	XMLName xml.Name        `xml:"Chapters"`
	Edition mkvEditionEntry `xml:"EditionEntry"`
}

type mkvEditionEntry struct {
	Atoms []mkvChapterAtom `xml:"ChapterAtom"`
}

type mkvChapterAtom struct {
	UID         string             `xml:"ChapterUID,omitempty"`
	TimeStart   string             `xml:"ChapterTimeStart"`
	TimeEnd     string             `xml:"ChapterTimeEnd,omitempty"`
	Displays    []mkvChapterDisplay `xml:"ChapterDisplay"`
}

type mkvChapterDisplay struct {
	String   string `xml:"ChapterString"`
	Language string `xml:"ChapterLanguage,omitempty"`
}

// Parse reads Matroska chapter XML into the canonical Chapter slice
// (spec.md §4.8 step 1).
func Parse(r io.Reader) ([]Chapter, error) {
	var doc mkvChapters
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse chapter xml: %w", err)
	}

	out := make([]Chapter, 0, len(doc.Edition.Atoms))
	for _, a := range doc.Edition.Atoms {
		startNs, err := parseMkvTimecode(a.TimeStart)
		if err != nil {
			return nil, fmt.Errorf("chapter %q: %w", a.UID, err)
		}
		ch := Chapter{UID: a.UID, StartNs: startNs}
		if a.TimeEnd != "" {
			endNs, err := parseMkvTimecode(a.TimeEnd)
			if err != nil {
				return nil, fmt.Errorf("chapter %q end: %w", a.UID, err)
			}
			ch.EndNs = &endNs
		}
		for _, d := range a.Displays {
			ch.Names = append(ch.Names, NameEntry{Lang: d.Language, Text: d.String})
		}
		out = append(out, ch)
	}
	return out, nil
}

// Emit writes the canonical Chapter slice back to Matroska chapter XML
// (spec.md §4.8 step 6).
func Emit(w io.Writer, chapters []Chapter) error {
	doc := mkvChapters{}
	for _, ch := range chapters {
		atom := mkvChapterAtom{
			UID:       ch.UID,
			TimeStart: formatMkvTimecode(ch.StartNs),
		}
		if ch.EndNs != nil {
			atom.TimeEnd = formatMkvTimecode(*ch.EndNs)
		}
		for _, n := range ch.Names {
			atom.Displays = append(atom.Displays, mkvChapterDisplay{String: n.Text, Language: n.Lang})
		}
		doc.Edition.Atoms = append(doc.Edition.Atoms, atom)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

// parseMkvTimecode parses "HH:MM:SS.nnnnnnnnn" into nanoseconds.
func parseMkvTimecode(s string) (int64, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timecode %q", s)
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
	}
	secParts := strings.SplitN(parts[2], ".", 2)
	sec, err := strconv.ParseInt(secParts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
	}
	var nanos int64
	if len(secParts) == 2 {
		frac := secParts[1]
		for len(frac) < 9 {
			frac += "0"
		}
		frac = frac[:9]
		nanos, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
		}
	}

	total := ((h*3600+m*60+sec)*1_000_000_000 + nanos)
	return total, nil
}

// formatMkvTimecode renders nanoseconds as "HH:MM:SS.nnnnnnnnn".
func formatMkvTimecode(ns int64) string {
	if ns < 0 {
		ns = 0
	}
	totalSec := ns / 1_000_000_000
	nanos := ns % 1_000_000_000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	return fmt.Sprintf("%02d:%02d:%02d.%09d", h, m, s, nanos)
}
