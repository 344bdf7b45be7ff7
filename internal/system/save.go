package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rosego/server/internal/core/ecs"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/persist"
	"github.com/rosego/server/internal/world"
)

// CharacterSaver persists one character snapshot. Production wiring is the
// postgres character repository.
type CharacterSaver interface {
	SaveSnapshot(ctx context.Context, c *persist.CharacterRow) error
}

// SaveSystem snapshots every connected character on an interval. Rows are
// captured synchronously inside the tick, the writes happen on a background
// goroutine so a slow database never stalls the loop.
type SaveSystem struct {
	stores   *world.Stores
	saver    CharacterSaver
	interval time.Duration
	log      *zap.Logger

	sinceLastSave time.Duration
}

func NewSaveSystem(stores *world.Stores, saver CharacterSaver, interval time.Duration, log *zap.Logger) *SaveSystem {
	return &SaveSystem{stores: stores, saver: saver, interval: interval, log: log}
}

func (s *SaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SaveSystem) Update(dt time.Duration) {
	s.sinceLastSave += dt
	if s.sinceLastSave < s.interval {
		return
	}
	s.sinceLastSave -= s.interval

	rows := s.Snapshot()
	if len(rows) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for i := range rows {
			if err := s.saver.SaveSnapshot(ctx, &rows[i]); err != nil {
				s.log.Error("save character snapshot",
					zap.String("name", rows[i].Name),
					zap.Error(err))
			}
		}
	}()
}

// Snapshot captures the persistable state of every loaded character.
func (s *SaveSystem) Snapshot() []persist.CharacterRow {
	st := s.stores

	var rows []persist.CharacterRow
	st.Character.Each(func(entity ecs.EntityID, info *world.CharacterInfo) {
		pos, ok := st.Position.Get(entity)
		if !ok {
			return
		}
		hp, ok := st.Health.Get(entity)
		if !ok {
			return
		}

		row := persist.CharacterRow{
			ID:     info.CharacterID,
			Name:   info.Name,
			Gender: int16(info.Gender),
			ZoneID: int32(pos.ZoneID),
			X:      pos.Pos.X,
			Y:      pos.Pos.Y,
			HP:     hp.HP,
			MaxHP:  hp.MaxHP,
		}
		if mana, ok := st.Mana.Get(entity); ok {
			row.MP = mana.MP
			row.MaxMP = mana.MaxMP
		}
		if ability, ok := st.Ability.Get(entity); ok {
			row.Level = ability.Level
		}
		if exp, ok := st.Experience.Get(entity); ok {
			row.XP = exp.XP
		}
		rows = append(rows, row)
	})
	return rows
}
