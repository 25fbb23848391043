// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	"github.com/pdiddy/singlelep/internal/eventio"
)

// Export writes every event of run runID to path as a feature file. The
// encoding follows the extension of path (.yaml, .yml or .json).
func (s *Store) Export(ctx context.Context, runID, path string) error {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return err
	}
	events, err := s.Events(ctx, runID)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	ff := eventio.FeatureFile{Source: run.Source, Events: events}
	if err := eventio.WriteFeatureFile(path, ff); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
