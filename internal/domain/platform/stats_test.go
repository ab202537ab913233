package platform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const codechefPayload = `{
	"success": true,
	"profile": "https://cdn.codechef.com/tourist.jpg",
	"name": "Gennady Korotkevich",
	"currentRating": 3500,
	"highestRating": 3600,
	"countryFlag": "https://cdn.codechef.com/flags/by.svg",
	"countryName": "Belarus",
	"globalRank": 1,
	"countryRank": "1",
	"stars": "7★"
}`

func TestAccepts(t *testing.T) {
	c := DefaultCatalog()
	cc, _ := c.Get(CodeChef)
	gfg, _ := c.Get(GeeksForGeeks)

	tests := []struct {
		name    string
		p       Platform
		payload string
		want    bool
		wantErr bool
	}{
		{"codechef found", cc, codechefPayload, true, false},
		{"codechef missing key", cc, `{"success": false, "status": 404}`, false, false},
		{"codechef zero rating", cc, `{"currentRating": 0}`, false, false},
		{"codechef null rating", cc, `{"currentRating": null}`, false, false},
		{"codechef string rating", cc, `{"currentRating": "1450"}`, true, false},
		{"gfg found", gfg, `{"info": {"userName": "tourist"}}`, true, false},
		{"gfg error body", gfg, `{"error": "user not found"}`, false, false},
		{"not json", cc, `<html>502</html>`, false, true},
		{"json array", cc, `[1,2]`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Accepts([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeStats_CodeChef(t *testing.T) {
	cc, _ := DefaultCatalog().Get(CodeChef)

	stats, err := cc.DecodeStats([]byte(codechefPayload))
	require.NoError(t, err)

	want := []Field{
		{Label: "Name", Value: "Gennady Korotkevich"},
		{Label: "Stars", Value: "7★"},
		{Label: "Rating", Value: "3500"},
		{Label: "Highest Rating", Value: "3600"},
		{Label: "Global Rank", Value: "1"},
		{Label: "Country Rank", Value: "1"},
		{Label: "Country", Value: "Belarus"},
	}
	if diff := cmp.Diff(want, stats.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "https://cdn.codechef.com/tourist.jpg", stats.AvatarURL())
	assert.Equal(t, "https://cdn.codechef.com/flags/by.svg", stats.(*CodeChefStats).FlagURL())
}

func TestDecodeStats_GFG(t *testing.T) {
	gfg, _ := DefaultCatalog().Get(GeeksForGeeks)

	payload := `{"info": {"userName": "tourist", "fullName": "", "institute": "BSU", "codingScore": 812, "instituteRank": null, "totalProblemsSolved": "301"}}`
	stats, err := gfg.DecodeStats([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "tourist", stats.DisplayName())
	fields := stats.Fields()
	assert.Equal(t, Field{Label: "Coding Score", Value: "812"}, fields[3])
	assert.Equal(t, Field{Label: "Institute Rank", Value: ""}, fields[2])
	assert.Equal(t, Field{Label: "Problems Solved", Value: "301"}, fields[4])
}

func TestDecodeStats_ImagePlatform(t *testing.T) {
	lc, _ := DefaultCatalog().Get(LeetCode)
	_, err := lc.DecodeStats([]byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}
