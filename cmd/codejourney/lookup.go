package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/khoahotran/codejourney/adapters/persistence"
	"github.com/khoahotran/codejourney/adapters/statsapi"
	"github.com/khoahotran/codejourney/internal/application/service"
	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/internal/config"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/internal/domain/session"
)

// errLookupFailed makes the process exit non-zero after the view has been printed.
var errLookupFailed = errors.New("lookup failed")

type lookupRequest struct {
	// Platform is empty for every platform.
	Platform string
	Handle   string
	Light    bool
	Output   string
}

func runCard(cmd *cobra.Command, args []string) error {
	uc, err := newUseCase()
	if err != nil {
		return err
	}
	defer uc.Close()
	return runLookup(cmd.Context(), uc, lookupRequest{Platform: args[0], Handle: args[1], Light: light, Output: output}, cmd.OutOrStdout())
}

func runAll(cmd *cobra.Command, args []string) error {
	uc, err := newUseCase()
	if err != nil {
		return err
	}
	defer uc.Close()
	return runLookup(cmd.Context(), uc, lookupRequest{Handle: args[0], Light: light, Output: output}, cmd.OutOrStdout())
}

// newUseCase builds the profile use case on an in-memory session. Timers never fire:
// the process exits before any display delay would matter.
func newUseCase() (*profileUC.ProfileUseCase, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	catalog, err := platform.NewCatalog(cfg.Stats.Endpoints)
	if err != nil {
		return nil, err
	}

	requestTimeout := cfg.Stats.RequestTimeout
	if timeout > 0 {
		requestTimeout = timeout
	}
	fetcher := statsapi.NewClient(&http.Client{}, requestTimeout, appLogger)

	return profileUC.NewProfileUseCase(
		persistence.NewMemorySessionRepo(),
		catalog,
		fetcher,
		service.NopPublisher{},
		service.NopNotifier{},
		service.NewManualScheduler(),
		appLogger,
		profileUC.Options{},
	), nil
}

func runLookup(ctx context.Context, uc *profileUC.ProfileUseCase, req lookupRequest, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	view, err := uc.ExecuteCreateSession(ctx)
	if err != nil {
		return err
	}
	id := view.SessionID

	if req.Light {
		if _, err := uc.ExecuteToggleTheme(ctx, id); err != nil {
			return err
		}
	}
	if _, err := uc.ExecuteSetHandle(ctx, id, req.Handle); err != nil {
		return err
	}

	if req.Platform == "" {
		view, err = uc.ExecuteFetchAll(ctx, id)
	} else {
		var p platform.Platform
		p, err = uc.Catalog().Parse(req.Platform)
		if err != nil {
			return err
		}
		view, err = uc.ExecuteFetch(ctx, id, p.ID)
	}
	if err != nil {
		return err
	}

	if err := writeView(out, req.Output, view); err != nil {
		return err
	}
	if failed(view, req.Platform == "") {
		return errLookupFailed
	}
	return nil
}

// failed is true when nothing could be shown, or when a single-platform lookup errored.
func failed(v *session.View, all bool) bool {
	if len(v.Cards) == 0 {
		return true
	}
	return !all && v.Error != ""
}
