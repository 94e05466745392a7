package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/document"
	"github.com/temirov/mdtree/internal/utils"
)

const errorSynchronizeFormat = "synchronize %s: %w"

// SyncResult reports one synchronization run.
type SyncResult struct {
	// Region is the generated region text; empty when generation failed.
	Region  string
	Outcome document.Outcome
}

// Synchronize generates the region and writes it into the configured document.
// Generation failures return OutcomeFailed before the document is touched.
func Synchronize(ctx context.Context, options SyncOptions) (SyncResult, error) {
	documentConfiguration := options.Configuration.Document
	region, generateError := GenerateRegion(ctx, options)
	if generateError != nil {
		return SyncResult{Outcome: document.OutcomeFailed}, generateError
	}

	synchronizer := document.NewSynchronizer(
		options.fileSystem(),
		document.Anchors{Start: documentConfiguration.StartAnchor, End: documentConfiguration.EndAnchor},
		documentConfiguration.BackupDirectory,
		options.Logger,
	)
	outcome, syncError := synchronizer.Sync(documentConfiguration.Path, region)
	result := SyncResult{Region: region, Outcome: outcome}
	if syncError != nil {
		return result, fmt.Errorf(errorSynchronizeFormat, filepath.ToSlash(documentConfiguration.Path), syncError)
	}
	utils.LoggerOrNop(options.Logger).Debug("synchronized",
		zap.String("document", documentConfiguration.Path),
		zap.Stringer("outcome", outcome),
	)
	return result, nil
}
