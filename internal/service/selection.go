package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
)

// FlowState labels the selection state machine. States are recorded in the
// trace so tests can assert the path taken.
type FlowState string

const (
	StateEmpty          FlowState = "EMPTY"
	StateAwaitUserSeed  FlowState = "AWAIT_USER_SEED"
	StateSeeded         FlowState = "SEEDED"
	StateOneAsset       FlowState = "ONE_ASSET"
	StateManyAssets     FlowState = "MANY_ASSETS"
	StateSelectOne      FlowState = "SELECT_ONE"
	StateConfirmReplace FlowState = "CONFIRM_REPLACE"
	StateConfirmed      FlowState = "CONFIRMED"
	StateCancelled      FlowState = "CANCELLED"
)

// SelectionFlow resolves which existing asset gets replaced, branching on
// inventory cardinality. All user interaction of the pipeline happens here.
type SelectionFlow struct {
	scanner   *Scanner
	prompter  port.Prompter
	refresher port.Refresher

	seedInterval time.Duration
	seedAttempts int

	trace []FlowState
}

func NewSelectionFlow(scanner *Scanner, prompter port.Prompter, refresher port.Refresher, seedInterval time.Duration, seedAttempts int) *SelectionFlow {
	return &SelectionFlow{
		scanner:      scanner,
		prompter:     prompter,
		refresher:    refresher,
		seedInterval: seedInterval,
		seedAttempts: seedAttempts,
	}
}

// Trace returns the states visited by the last Resolve call, in order.
func (f *SelectionFlow) Trace() []FlowState { return f.trace }

func (f *SelectionFlow) enter(s FlowState) {
	f.trace = append(f.trace, s)
	logger.Debug.Printf("selection flow: %s", s)
}

// Resolve scans the inventory and walks the state machine to a terminal
// state. It returns the confirmed target asset, domain.ErrUserCancelled on a
// clean cancel, or domain.ErrSeedTimeout when the seed wait expires.
func (f *SelectionFlow) Resolve(ctx context.Context) (*domain.WallpaperAsset, error) {
	f.trace = nil

	assets, err := f.scanner.Scan()
	if err != nil {
		return nil, err
	}

	switch len(assets) {
	case 0:
		f.enter(StateEmpty)
		return f.awaitSeed(ctx)
	case 1:
		f.enter(StateOneAsset)
		return f.confirm(assets[0])
	default:
		f.enter(StateManyAssets)
		return f.selectOne(assets)
	}
}

// awaitSeed asks the user to create the first wallpaper asset through System
// Settings, then polls the inventory on a fixed interval with a bounded
// attempt count. This is the only designed timeout in the system.
func (f *SelectionFlow) awaitSeed(ctx context.Context) (*domain.WallpaperAsset, error) {
	f.enter(StateAwaitUserSeed)

	if f.refresher != nil {
		if err := f.refresher.OpenWallpaperSettings(ctx); err != nil {
			logger.Warn.Printf("could not open wallpaper settings: %v", err)
		}
	}
	if _, err := f.prompter.Ask("No wallpaper assets found. In System Settings, pick any video wallpaper, then press Enter to start waiting."); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= f.seedAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.seedInterval):
		}

		assets, err := f.scanner.Scan()
		if err != nil {
			return nil, err
		}
		if len(assets) > 0 {
			f.enter(StateSeeded)
			logger.Info.Printf("detected seeded asset %s (attempt %d/%d)", assets[0].Name, attempt, f.seedAttempts)
			// The seeded path hands off the newly detected asset
			// directly; there is nothing to choose between yet.
			return &assets[0], nil
		}
		logger.Debug.Printf("seed poll %d/%d: directory still empty", attempt, f.seedAttempts)
	}

	return nil, fmt.Errorf("%w after %d attempts; set a video wallpaper in System Settings and rerun", domain.ErrSeedTimeout, f.seedAttempts)
}

func (f *SelectionFlow) selectOne(assets []domain.WallpaperAsset) (*domain.WallpaperAsset, error) {
	f.enter(StateSelectOne)

	options := make([]string, len(assets))
	for i, a := range assets {
		options[i] = fmt.Sprintf("%s  (%s, modified %s)", a.Name, domain.FormatSize(a.SizeBytes), a.ModifiedAt.Format("2006-01-02 15:04"))
	}

	idx, err := f.prompter.Select("Which wallpaper should be replaced?", options)
	if err != nil {
		if errors.Is(err, domain.ErrUserCancelled) {
			f.enter(StateCancelled)
			return nil, domain.ErrUserCancelled
		}
		return nil, err
	}
	return f.confirm(assets[idx])
}

func (f *SelectionFlow) confirm(asset domain.WallpaperAsset) (*domain.WallpaperAsset, error) {
	f.enter(StateConfirmReplace)

	ok, err := f.prompter.Confirm(fmt.Sprintf("Replace %q? A backup will be made first.", asset.Name))
	if err != nil {
		return nil, err
	}
	if !ok {
		f.enter(StateCancelled)
		return nil, domain.ErrUserCancelled
	}

	f.enter(StateConfirmed)
	return &asset, nil
}
