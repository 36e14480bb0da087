package trainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/steerlab/voxsteer/internal/boundary"
	"github.com/steerlab/voxsteer/internal/store"
)

// SaveModel exports the current model from the boundary and persists it.
func SaveModel(ctx context.Context, bnd *boundary.Boundary, st *store.Store, labels []string) error {
	resp := bnd.Call(ctx, boundary.Request{Action: boundary.ActionExport})
	if !resp.OK {
		return fmt.Errorf("save model: %s", resp.Err)
	}
	return st.Save(store.Record{
		ModelState: resp.Result.ModelState,
		Scaler:     resp.Result.Scaler,
		Labels:     labels,
	})
}

// LoadModel restores the persisted snapshot into the boundary and
// returns the label set it was trained with. A missing snapshot
// surfaces as store.ErrNotFound.
func LoadModel(ctx context.Context, bnd *boundary.Boundary, st *store.Store) ([]string, error) {
	rec, err := st.Load()
	if err != nil {
		return nil, err
	}
	resp := bnd.Call(ctx, boundary.Request{
		Action: boundary.ActionImport,
		Import: &boundary.ImportPayload{
			ModelState: rec.ModelState,
			Scaler:     rec.Scaler,
		},
	})
	if !resp.OK {
		return nil, fmt.Errorf("load model: %s", resp.Err)
	}
	return rec.Labels, nil
}

// ClearModel drops both the in-memory model and the persisted snapshot.
func ClearModel(ctx context.Context, bnd *boundary.Boundary, st *store.Store) error {
	resp := bnd.Call(ctx, boundary.Request{Action: boundary.ActionReset})
	if !resp.OK {
		return fmt.Errorf("clear model: %s", resp.Err)
	}
	if err := st.Clear(); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
