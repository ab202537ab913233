package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/codejourney/internal/domain/platform"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestNew_DefaultsToDarkTheme(t *testing.T) {
	s := New(uuid.New(), fixedNow)
	assert.Equal(t, platform.ThemeDark, s.Theme)
	assert.Empty(t, s.Error)
	assert.True(t, s.LastUpdated.IsZero())
}

func TestClearError_OnlyClearsMatchingSequence(t *testing.T) {
	s := New(uuid.New(), fixedNow)

	first := s.ShowError("Please enter a LeetCode username")
	second := s.ShowError("CodeChef username not found.")

	assert.False(t, s.ClearError(first))
	assert.Equal(t, "CodeChef username not found.", s.Error)

	assert.True(t, s.ClearError(second))
	assert.Empty(t, s.Error)
	assert.False(t, s.ClearError(second))
}

func TestMarkSuccess_ClearsErrorAndStampsTime(t *testing.T) {
	s := New(uuid.New(), fixedNow)
	s.ShowError("Failed to fetch CodeChef stats.")

	s.MarkSuccess(fixedNow.Add(time.Minute))

	assert.Empty(t, s.Error)
	assert.Equal(t, fixedNow.Add(time.Minute), s.LastUpdated)
}

func TestToggleTheme_RegeneratesThemedCards(t *testing.T) {
	catalog := platform.DefaultCatalog()
	lc, _ := catalog.Get(platform.LeetCode)
	cf, _ := catalog.Get(platform.Codeforces)

	s := New(uuid.New(), fixedNow)
	s.SetImageResult(platform.LeetCode, "tourist", lc.CardURL("tourist", s.Theme), fixedNow)
	s.SetImageResult(platform.Codeforces, "tourist", cf.CardURL("tourist", s.Theme), fixedNow)
	s.SetHandle("petr")

	s.ToggleTheme(catalog)

	assert.Equal(t, platform.ThemeLight, s.Theme)
	assert.Equal(t, lc.CardURL("tourist", platform.ThemeLight), s.Peek(platform.LeetCode).ImageURL)
	assert.Equal(t, cf.CardURL("tourist", platform.ThemeDark), s.Peek(platform.Codeforces).ImageURL)
	assert.Nil(t, s.Peek(platform.GitHub))
}

func TestToggleTheme_WithoutResultsOnlyFlips(t *testing.T) {
	s := New(uuid.New(), fixedNow)
	s.ToggleTheme(platform.DefaultCatalog())

	assert.Equal(t, platform.ThemeLight, s.Theme)
	assert.Empty(t, s.Slots)
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := New(uuid.New(), fixedNow)
	s.SetHandle("tourist")
	s.BeginLoading(platform.CodeChef)
	s.SetPayloadResult(platform.CodeChef, "tourist", json.RawMessage(`{"currentRating":3500}`), fixedNow)
	s.ShowError("boom")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, s.ID, decoded.ID)
	assert.Equal(t, "tourist", decoded.Handle)
	assert.True(t, decoded.Peek(platform.CodeChef).Loading)
	assert.JSONEq(t, `{"currentRating":3500}`, string(decoded.Peek(platform.CodeChef).Payload))
	assert.Equal(t, s.ErrorSeq, decoded.ErrorSeq)
}

func TestBuildView(t *testing.T) {
	catalog := platform.DefaultCatalog()
	lc, _ := catalog.Get(platform.LeetCode)

	s := New(uuid.New(), fixedNow)
	s.SetHandle("petr")
	s.SetImageResult(platform.LeetCode, "tourist", lc.CardURL("tourist", s.Theme), fixedNow)
	s.SetPayloadResult(platform.CodeChef, "tourist", json.RawMessage(`{"name":"Gennady","currentRating":3500,"countryFlag":"flag.svg","profile":"me.jpg"}`), fixedNow)
	s.SetPayloadResult(platform.GeeksForGeeks, "tourist", json.RawMessage(`not json`), fixedNow)
	s.BeginLoading(platform.Codeforces)

	v := BuildView(s, catalog)

	require.Len(t, v.Cards, 2)
	assert.Equal(t, platform.LeetCode, v.Cards[0].Platform)
	assert.Equal(t, "https://leetcode.com/tourist", v.Cards[0].ProfileURL)
	assert.Equal(t, lc.CardURL("tourist", platform.ThemeDark), v.Cards[0].ImageURL)

	cc := v.Cards[1]
	assert.Equal(t, platform.CodeChef, cc.Platform)
	assert.Equal(t, "CodeChef Stats", cc.Title)
	assert.Equal(t, "me.jpg", cc.AvatarURL)
	assert.Equal(t, "flag.svg", cc.FlagURL)
	assert.Equal(t, "https://www.codechef.com/users/tourist", cc.ProfileURL)

	assert.True(t, v.Loading[platform.Codeforces])
	assert.False(t, v.Loading[platform.AtCoder])
	assert.Equal(t, "petr", v.Handle)
}

func TestEndLoading_OnlyLatestFetchEndsWindow(t *testing.T) {
	s := New(uuid.New(), fixedNow)

	first := s.BeginLoading(platform.LeetCode)
	second := s.BeginLoading(platform.LeetCode)

	assert.False(t, s.EndLoading(platform.LeetCode, first))
	assert.True(t, s.Peek(platform.LeetCode).Loading)

	assert.True(t, s.EndLoading(platform.LeetCode, second))
	assert.False(t, s.Peek(platform.LeetCode).Loading)
	assert.False(t, s.EndLoading(platform.Codeforces, 1))
}
