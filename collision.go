package impulse

import (
	"errors"
	"log/slog"

	"github.com/akmonengine/impulse/contact"
)

// Session is the working set of one collision detection pass. It is rebuilt from scratch on
// every call and only read afterwards.
type Session struct {
	Pairs    []Pair
	Contacts []contact.Contact
	Stats    contact.Stats
}

// ComputeCollisionDetection runs the broad phase, the narrow phase, and contact resolution
// over the world's bodies. Resolution adds forces to the bodies' accumulators; it does not
// touch velocities.
//
// A pair the narrow phase cannot evaluate is skipped and its error returned, joined with the
// others, after the remaining contacts have been resolved.
func (w *World) ComputeCollisionDetection(broad BroadPhaseMethod, narrow NarrowPhaseMethod, eps, dt float64) ([]contact.Contact, error) {
	if err := contact.Validate(eps, dt); err != nil {
		return nil, err
	}
	strategy, err := narrow.Strategy()
	if err != nil {
		return nil, err
	}
	if broad == BroadPhaseSpatialGrid && w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(DefaultCellSize, DefaultGridCells)
	}

	pairs, err := BroadPhase(broad, w.Bodies, w.SpatialGrid)
	if err != nil {
		return nil, err
	}

	contacts, narrowErr := w.narrowPhase(strategy, pairs)

	stats, err := contact.Resolve(contacts, eps, dt)
	if err != nil {
		return nil, err
	}

	w.session = Session{Pairs: pairs, Contacts: contacts, Stats: stats}
	w.logger().Debug("collision detection",
		slog.String("broad", broad.String()),
		slog.String("narrow", narrow.String()),
		slog.Int("pairs", len(pairs)),
		slog.Int("contacts", len(contacts)),
		slog.Int("applied", stats.Applied),
		slog.Int("separating", stats.Separating),
		slog.Int("skipped", stats.Skipped),
	)

	return contacts, narrowErr
}

// narrowPhase evaluates the pairs on the world's workers. Results are gathered per pair index
// so the contact order does not depend on scheduling.
func (w *World) narrowPhase(strategy NarrowPhase, pairs []Pair) ([]contact.Contact, error) {
	results := make([][]contact.Contact, len(pairs))
	errs := make([]error, len(pairs))

	task(w.Workers, pairs, func(i int, pair Pair) {
		results[i], errs[i] = strategy.Collide(w.Bodies[pair.I], w.Bodies[pair.J])
	})

	var contacts []contact.Contact
	for i, r := range results {
		if errs[i] != nil {
			w.logger().Warn("narrow phase skipped pair",
				slog.Int("a", w.Bodies[pairs[i].I].ID),
				slog.Int("b", w.Bodies[pairs[i].J].ID),
				slog.Any("error", errs[i]),
			)
			continue
		}
		contacts = append(contacts, r...)
	}

	return contacts, errors.Join(errs...)
}

// LastSession returns the working set of the latest collision detection pass
func (w *World) LastSession() Session {
	return w.session
}
