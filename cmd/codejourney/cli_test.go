package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/khoahotran/codejourney/adapters/persistence"
	"github.com/khoahotran/codejourney/adapters/statsapi"
	"github.com/khoahotran/codejourney/internal/application/service"
	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/logger"
)

func newTestUseCase(t *testing.T) *profileUC.ProfileUseCase {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/handle/tourist":
			_, _ = w.Write([]byte(`{"name":"Gennady Korotkevich","currentRating":3500}`))
		case "/handle/nobody":
			_, _ = w.Write([]byte(`{"success":false}`))
		default:
			_, _ = w.Write([]byte(`{"info":{"fullName":"Gennady"}}`))
		}
	}))
	t.Cleanup(srv.Close)

	catalog, err := platform.NewCatalog(map[string]string{
		string(platform.CodeChef):      srv.URL,
		string(platform.GeeksForGeeks): srv.URL,
	})
	require.NoError(t, err)

	uc := profileUC.NewProfileUseCase(
		persistence.NewMemorySessionRepo(),
		catalog,
		statsapi.NewClient(srv.Client(), time.Second, logger.NewNop()),
		service.NopPublisher{},
		service.NopNotifier{},
		service.NewManualScheduler(),
		logger.NewNop(),
		profileUC.Options{},
	)
	t.Cleanup(uc.Close)
	return uc
}

func TestRunLookup_CardText(t *testing.T) {
	var out bytes.Buffer
	err := runLookup(context.Background(), newTestUseCase(t), lookupRequest{Platform: "codechef", Handle: "tourist", Output: outputText}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "CodeChef Stats (tourist)")
	assert.Contains(t, out.String(), "Gennady Korotkevich")
	assert.Contains(t, out.String(), "Last updated: ")
}

func TestRunLookup_LightImageCardJSON(t *testing.T) {
	var out bytes.Buffer
	err := runLookup(context.Background(), newTestUseCase(t), lookupRequest{Platform: "github", Handle: "tourist", Light: true, Output: outputJSON}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"theme": "light"`)
	assert.Contains(t, out.String(), `theme=default`)
}

func TestRunLookup_NotFoundFails(t *testing.T) {
	var out bytes.Buffer
	err := runLookup(context.Background(), newTestUseCase(t), lookupRequest{Platform: "codechef", Handle: "nobody", Output: outputText}, &out)
	assert.ErrorIs(t, err, errLookupFailed)
	assert.Contains(t, out.String(), "CodeChef username not found.")
}

func TestRunLookup_AllYAML(t *testing.T) {
	var out bytes.Buffer
	err := runLookup(context.Background(), newTestUseCase(t), lookupRequest{Handle: "tourist", Output: outputYAML}, &out)
	require.NoError(t, err)

	var doc struct {
		Handle string `yaml:"handle"`
		Cards  []struct {
			Platform string `yaml:"platform"`
		} `yaml:"cards"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "tourist", doc.Handle)
	require.Len(t, doc.Cards, 6)
	assert.Equal(t, "leetcode", doc.Cards[0].Platform)
	assert.Equal(t, "geeksforgeeks", doc.Cards[5].Platform)
}

func TestRunLookup_UnknownPlatform(t *testing.T) {
	err := runLookup(context.Background(), newTestUseCase(t), lookupRequest{Platform: "topcoder", Handle: "tourist"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, platform.ErrUnknownPlatform)
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	rootCmd.SetArgs([]string{"card", "leetcode", "tourist", "--output", "xml"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { output = outputText })

	assert.ErrorContains(t, rootCmd.Execute(), "unknown output")
}
