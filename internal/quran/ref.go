package quran

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/khatmahq/khatma-server/internal/errors"
)

// VerseRef identifies a single verse by surah and verse number.
type VerseRef struct {
	Surah int `json:"surah"`
	Verse int `json:"verse"`
}

// String returns the canonical "surah:verse" form, e.g. "2:255".
func (r VerseRef) String() string {
	return strconv.Itoa(r.Surah) + ":" + strconv.Itoa(r.Verse)
}

// IsValid reports whether the reference names an existing verse.
func (r VerseRef) IsValid() bool {
	return r.Verse >= 1 && r.Verse <= SurahVerseCount(r.Surah)
}

// GlobalID returns the position of the verse in the linear ordering of the
// whole Quran, 1 for 1:1 through 6236 for 114:6. The reference must be valid.
func (r VerseRef) GlobalID() int {
	return verseOffsets[r.Surah-1] + r.Verse
}

// FromGlobalID converts a linear verse index back into a surah:verse
// reference. Returns a validation error if id is outside 1..6236.
func FromGlobalID(id int) (VerseRef, error) {
	if id < 1 || id > TotalVerses {
		return VerseRef{}, apperrors.Validationf("global verse id %d out of range 1..%d", id, TotalVerses)
	}
	// Binary search over the cumulative offsets: find the last surah whose
	// offset is below id.
	lo, hi := 0, SurahCount-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if verseOffsets[mid] < id {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return VerseRef{Surah: lo + 1, Verse: id - verseOffsets[lo]}, nil
}

// ParseRef parses a "surah:verse" string into a validated VerseRef.
func ParseRef(ref string) (VerseRef, error) {
	surahPart, versePart, found := strings.Cut(ref, ":")
	if !found {
		return VerseRef{}, apperrors.Validationf("invalid verse reference %q: expected surah:verse", ref)
	}
	surah, err := strconv.Atoi(strings.TrimSpace(surahPart))
	if err != nil {
		return VerseRef{}, apperrors.Validationf("invalid verse reference %q: surah is not a number", ref)
	}
	verse, err := strconv.Atoi(strings.TrimSpace(versePart))
	if err != nil {
		return VerseRef{}, apperrors.Validationf("invalid verse reference %q: verse is not a number", ref)
	}
	r := VerseRef{Surah: surah, Verse: verse}
	if surah < 1 || surah > SurahCount {
		return VerseRef{}, apperrors.Validationf("invalid verse reference %q: surah %d out of range 1..%d", ref, surah, SurahCount)
	}
	if !r.IsValid() {
		return VerseRef{}, apperrors.Validationf("invalid verse reference %q: surah %d has %d verses", ref, surah, SurahVerseCount(surah))
	}
	return r, nil
}

// MustParseRef is like ParseRef but panics on error. Intended for
// compile-time-known references in tests and seed data.
func MustParseRef(ref string) VerseRef {
	r, err := ParseRef(ref)
	if err != nil {
		panic(fmt.Sprintf("quran: %v", err))
	}
	return r
}
