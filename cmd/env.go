package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fitpull/fitpull/internal/agent"
	"github.com/fitpull/fitpull/internal/browser"
	"github.com/fitpull/fitpull/internal/store"
	"github.com/fitpull/fitpull/pkg/anthropic"
)

// env bundles the shared dependencies of the serve and run commands.
type env struct {
	Store    store.Store
	Tracker  *agent.Tracker
	Pipeline *agent.Pipeline
}

// initEnv builds the store and the pipeline. The Anthropic key is
// required here; commands that never call the model open the store
// directly instead.
func initEnv(ctx context.Context) (*env, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic.key is required (set FITPULL_ANTHROPIC_KEY or config.yaml)")
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	llm := anthropic.NewClient(cfg.Anthropic.Key)
	launcher := &browser.ChromeLauncher{Headless: cfg.Webmail.Headless}
	tracker := agent.NewTracker()

	return &env{
		Store:    st,
		Tracker:  tracker,
		Pipeline: agent.New(llm, launcher, st, cfg, tracker),
	}, nil
}

func (e *env) Close() {
	e.Store.Close()
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
