package platform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrMalformedPayload = errors.New("malformed stats payload")

// Field is one labelled line of a JSON card.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Stats is the parsed form of a JSON platform payload.
type Stats interface {
	DisplayName() string
	AvatarURL() string
	Fields() []Field
}

// FlexString accepts a JSON string, number or null. The stats APIs are inconsistent
// about ranks ("Inactive", 1234, null).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

type CodeChefStats struct {
	Name          string     `json:"name"`
	Profile       string     `json:"profile"`
	CurrentRating FlexString `json:"currentRating"`
	HighestRating FlexString `json:"highestRating"`
	GlobalRank    FlexString `json:"globalRank"`
	CountryRank   FlexString `json:"countryRank"`
	Stars         FlexString `json:"stars"`
	CountryFlag   string     `json:"countryFlag"`
	CountryName   string     `json:"countryName"`
}

func (s *CodeChefStats) DisplayName() string { return s.Name }
func (s *CodeChefStats) AvatarURL() string   { return s.Profile }

func (s *CodeChefStats) Fields() []Field {
	return []Field{
		{Label: "Name", Value: s.Name},
		{Label: "Stars", Value: s.Stars.String()},
		{Label: "Rating", Value: s.CurrentRating.String()},
		{Label: "Highest Rating", Value: s.HighestRating.String()},
		{Label: "Global Rank", Value: s.GlobalRank.String()},
		{Label: "Country Rank", Value: s.CountryRank.String()},
		{Label: "Country", Value: s.CountryName},
	}
}

// FlagURL is the country flag image shown next to the country name.
func (s *CodeChefStats) FlagURL() string { return s.CountryFlag }

type GFGInfo struct {
	UserName            string     `json:"userName"`
	FullName            string     `json:"fullName"`
	ProfilePicture      string     `json:"profilePicture"`
	Institute           string     `json:"institute"`
	InstituteRank       FlexString `json:"instituteRank"`
	CurrentStreak       FlexString `json:"currentStreak"`
	MaxStreak           FlexString `json:"maxStreak"`
	CodingScore         FlexString `json:"codingScore"`
	MonthlyScore        FlexString `json:"monthlyScore"`
	TotalProblemsSolved FlexString `json:"totalProblemsSolved"`
}

type GFGStats struct {
	Info GFGInfo `json:"info"`
}

func (s *GFGStats) DisplayName() string {
	if s.Info.FullName != "" {
		return s.Info.FullName
	}
	return s.Info.UserName
}

func (s *GFGStats) AvatarURL() string { return s.Info.ProfilePicture }

func (s *GFGStats) Fields() []Field {
	return []Field{
		{Label: "Name", Value: s.DisplayName()},
		{Label: "Institute", Value: s.Info.Institute},
		{Label: "Institute Rank", Value: s.Info.InstituteRank.String()},
		{Label: "Coding Score", Value: s.Info.CodingScore.String()},
		{Label: "Problems Solved", Value: s.Info.TotalProblemsSolved.String()},
		{Label: "Current Streak", Value: s.Info.CurrentStreak.String()},
		{Label: "Max Streak", Value: s.Info.MaxStreak.String()},
		{Label: "Monthly Score", Value: s.Info.MonthlyScore.String()},
	}
}

// Accepts reports whether payload describes an existing user, i.e. whether the success
// key is present and truthy. A body that is not a JSON object is an error.
func (p Platform) Accepts(payload []byte) (bool, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	raw, ok := top[p.SuccessKey]
	if !ok {
		return false, nil
	}
	return truthy(raw), nil
}

func truthy(raw json.RawMessage) bool {
	v := string(bytes.TrimSpace(raw))
	switch v {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}

// DecodeStats parses a stored payload into the platform's typed stats.
func (p Platform) DecodeStats(payload []byte) (Stats, error) {
	var stats Stats
	switch p.ID {
	case CodeChef:
		stats = &CodeChefStats{}
	case GeeksForGeeks:
		stats = &GFGStats{}
	default:
		return nil, fmt.Errorf("%w: %s has no stats payload", ErrUnknownPlatform, p.ID)
	}
	if err := json.Unmarshal(payload, stats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return stats, nil
}
