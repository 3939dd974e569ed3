package decision

import (
	"context"
	"log/slog"

	"github.com/patchline/verdict/internal/model"
	"github.com/patchline/verdict/internal/sanitize"
	"github.com/patchline/verdict/internal/store"
)

// Load pulls the persisted payload and repairs it into a board. Every failure
// path lands on a usable board: store errors and rejected payloads fall back
// to the default one.
func Load(ctx context.Context, st store.Store, key string, logger *slog.Logger) (*model.DecisionModel, LoadStatus) {
	if st == nil {
		return model.NewDefault(), LoadStatus{
			State:   LoadFresh,
			Message: "Storage is unavailable. Changes will not persist.",
		}
	}

	raw, err := st.LoadBoard(ctx, key)
	if err != nil {
		logger.Warn("could not load saved board", "key", key, "error", err)
		return model.NewDefault(), LoadStatus{
			State:   LoadFresh,
			Message: "Saved data could not be read. Starting fresh.",
		}
	}
	if raw == nil {
		return model.NewDefault(), LoadStatus{State: LoadFresh}
	}

	result, err := sanitize.Payload(raw)
	if err != nil {
		logger.Warn("saved board rejected", "key", key, "error", err)
		return model.NewDefault(), LoadStatus{
			State:   LoadReset,
			Message: "Saved data used an unsupported format and was reset.",
		}
	}
	if result.Repaired {
		logger.Info("saved board repaired during load", "key", key)
		return result.Model, LoadStatus{
			State:   LoadRepaired,
			Message: "Some saved data was repaired during load.",
		}
	}
	return result.Model, LoadStatus{State: LoadClean}
}
