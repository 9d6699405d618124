package scores

import (
	"context"
	"errors"
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/polysweeper/internal/minefield"
)

// Keeper tracks the scores of one game in the current mode and syncs them
// with a [Store]. Scores added locally survive a save: the stored table is
// read back and merged before being written.
type Keeper struct {
	store  Store
	game   string
	mode   minefield.ModeKey
	table  *Table
	loaded bool
	rnd    *rand.Rand
}

func NewKeeper(ctx context.Context, store Store, game string) (*Keeper, error) {
	k := &Keeper{
		store: store,
		game:  game,
		table: NewTable(),
		rnd: rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		)),
	}
	if err := k.Read(ctx); err != nil {
		return nil, err
	}
	return k, nil
}

// Read merges the stored table into memory. A store with nothing saved yet
// is not an error.
func (k *Keeper) Read(ctx context.Context) error {
	stored, err := k.store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		Log.WithField("game", k.game).Info("no scores stored yet")
		return nil
	} else if err != nil {
		return err
	}
	k.table.Merge(stored)
	k.loaded = true
	return nil
}

func (k *Keeper) Game() string { return k.game }

func (k *Keeper) Mode() minefield.ModeKey { return k.mode }

func (k *Keeper) SetMode(mode minefield.ModeKey) { k.mode = mode }

func (k *Keeper) Table() *Table { return k.table }

func (k *Keeper) Add(scorer string, seconds int) Score {
	s := Score{
		ID:      newID(k.rnd, k.loaded, k.table.Len(k.game, k.mode)),
		Scorer:  scorer,
		Seconds: seconds,
	}
	k.table.Insert(k.game, k.mode, s)
	return s
}

func (k *Keeper) Top() []Score {
	return k.table.Top(k.game, k.mode, DefaultTop)
}

func (k *Keeper) InTop(seconds int) bool {
	return k.table.InTop(k.game, k.mode, seconds, DefaultTop)
}

func (k *Keeper) Save(ctx context.Context) error {
	if err := k.Read(ctx); err != nil {
		return err
	}
	return k.store.Save(ctx, k.table)
}

// ClearMode drops the stored scores of the current mode.
func (k *Keeper) ClearMode(ctx context.Context) error {
	if err := k.Read(ctx); err != nil {
		return err
	}
	k.table.ClearMode(k.game, k.mode)
	return k.store.Save(ctx, k.table)
}

// ClearGame drops the stored scores of every mode of the game.
func (k *Keeper) ClearGame(ctx context.Context) error {
	if err := k.Read(ctx); err != nil {
		return err
	}
	k.table.ClearGame(k.game)
	return k.store.Save(ctx, k.table)
}
