package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/khatmahq/khatma-server/internal/quran"
)

// Quran reference endpoints are public and serve compiled-in data only.
func (s *Server) registerQuranRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSurahs",
		Method:      http.MethodGet,
		Path:        "/api/v1/quran/surahs",
		Summary:     "List surahs",
		Description: "Returns the full surah reference table",
		Tags:        []string{"Quran"},
	}, s.handleListSurahs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSurah",
		Method:      http.MethodGet,
		Path:        "/api/v1/quran/surahs/{number}",
		Summary:     "Get surah",
		Tags:        []string{"Quran"},
	}, s.handleGetSurah)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateVerseRange",
		Method:      http.MethodGet,
		Path:        "/api/v1/quran/validate-range",
		Summary:     "Validate verse range",
		Description: "Checks a start/end verse reference pair and returns the normalized range",
		Tags:        []string{"Quran"},
	}, s.handleValidateRange)
}

// SurahListOutput wraps the surah table for Huma.
type SurahListOutput struct {
	Body struct {
		Surahs      []quran.Surah `json:"surahs"`
		TotalVerses int           `json:"total_verses"`
	}
}

// GetSurahInput identifies one surah by number.
type GetSurahInput struct {
	Number int `path:"number" minimum:"1" maximum:"114" doc:"Surah number"`
}

// SurahOutput wraps one surah for Huma.
type SurahOutput struct {
	Body quran.Surah
}

// ValidateRangeInput carries the raw references to validate.
type ValidateRangeInput struct {
	Start string `query:"start" required:"true" doc:"Range start (surah:verse)"`
	End   string `query:"end" required:"true" doc:"Range end (surah:verse)"`
}

// ValidateRangeOutput describes a validated verse range.
type ValidateRangeOutput struct {
	Body struct {
		Start      string `json:"start" doc:"Normalized start reference"`
		End        string `json:"end" doc:"Normalized end reference"`
		Display    string `json:"display" doc:"Human-readable range"`
		VerseCount int    `json:"verse_count" doc:"Number of verses in the range"`
	}
}

func (s *Server) handleListSurahs(ctx context.Context, _ *struct{}) (*SurahListOutput, error) {
	out := &SurahListOutput{}
	out.Body.Surahs = quran.Surahs[:]
	out.Body.TotalVerses = quran.TotalVerses
	return out, nil
}

func (s *Server) handleGetSurah(ctx context.Context, input *GetSurahInput) (*SurahOutput, error) {
	surah, ok := quran.GetSurah(input.Number)
	if !ok {
		return nil, huma.Error404NotFound("surah not found")
	}
	return &SurahOutput{Body: surah}, nil
}

func (s *Server) handleValidateRange(ctx context.Context, input *ValidateRangeInput) (*ValidateRangeOutput, error) {
	vr, err := quran.ParseRange(input.Start, input.End)
	if err != nil {
		return nil, err
	}

	out := &ValidateRangeOutput{}
	out.Body.Start = vr.Start.String()
	out.Body.End = vr.End.String()
	out.Body.Display = vr.Display()
	out.Body.VerseCount = vr.Count()
	return out, nil
}
