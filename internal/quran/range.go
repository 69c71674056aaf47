package quran

import (
	"strconv"
	"strings"

	apperrors "github.com/khatmahq/khatma-server/internal/errors"
)

// VerseRange is an inclusive span of verses in reading order. Ranges may
// cross surah boundaries; ordering is defined by the global verse index.
type VerseRange struct {
	Start VerseRef `json:"start"`
	End   VerseRef `json:"end"`
}

// Validate checks that both endpoints name existing verses and that Start
// does not come after End in reading order.
func (vr VerseRange) Validate() error {
	if !vr.Start.IsValid() {
		return apperrors.Validationf("invalid range start %s", vr.Start)
	}
	if !vr.End.IsValid() {
		return apperrors.Validationf("invalid range end %s", vr.End)
	}
	if vr.Start.GlobalID() > vr.End.GlobalID() {
		return apperrors.Validationf("range start %s comes after end %s", vr.Start, vr.End)
	}
	return nil
}

// Count returns the number of verses the range covers, inclusive of both
// endpoints. The range must be valid.
func (vr VerseRange) Count() int {
	return vr.End.GlobalID() - vr.Start.GlobalID() + 1
}

// Expand returns every verse in the range in reading order, inclusive.
// The range must be valid.
func (vr VerseRange) Expand() []VerseRef {
	start, end := vr.Start.GlobalID(), vr.End.GlobalID()
	refs := make([]VerseRef, 0, end-start+1)
	for id := start; id <= end; id++ {
		ref, _ := FromGlobalID(id)
		refs = append(refs, ref)
	}
	return refs
}

// Contains reports whether the range covers the given verse.
func (vr VerseRange) Contains(ref VerseRef) bool {
	id := ref.GlobalID()
	return id >= vr.Start.GlobalID() && id <= vr.End.GlobalID()
}

// Overlaps reports whether two valid ranges share at least one verse.
func (vr VerseRange) Overlaps(other VerseRange) bool {
	return vr.Start.GlobalID() <= other.End.GlobalID() &&
		other.Start.GlobalID() <= vr.End.GlobalID()
}

// Display renders the range for human consumption using surah names:
// "Al-Fatihah 3" for a single verse, "Al-Fatihah 1-7" within one surah,
// and "Al-Fatihah 5 to Al-Baqarah 10" across surahs.
func (vr VerseRange) Display() string {
	startSurah, _ := GetSurah(vr.Start.Surah)
	endSurah, _ := GetSurah(vr.End.Surah)
	switch {
	case vr.Start == vr.End:
		return startSurah.Name + " " + strconv.Itoa(vr.Start.Verse)
	case vr.Start.Surah == vr.End.Surah:
		return startSurah.Name + " " + strconv.Itoa(vr.Start.Verse) + "-" + strconv.Itoa(vr.End.Verse)
	default:
		return startSurah.Name + " " + strconv.Itoa(vr.Start.Verse) + " to " + endSurah.Name + " " + strconv.Itoa(vr.End.Verse)
	}
}

// ParseRange parses "surah:verse" start and end strings into a validated
// range. Errors name the offending endpoint so callers can surface them to
// input fields directly.
func ParseRange(start, end string) (VerseRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return VerseRange{}, apperrors.Validation("start and end references are both required")
	}
	s, err := ParseRef(start)
	if err != nil {
		return VerseRange{}, apperrors.Validationf("invalid start: %v", err)
	}
	e, err := ParseRef(end)
	if err != nil {
		return VerseRange{}, apperrors.Validationf("invalid end: %v", err)
	}
	vr := VerseRange{Start: s, End: e}
	if err := vr.Validate(); err != nil {
		return VerseRange{}, err
	}
	return vr, nil
}
