package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/mdtree/internal/utils"
)

// Outcome is the result of a synchronization run.
type Outcome int

const (
	// OutcomeUnchanged means the region already matched; nothing was written.
	OutcomeUnchanged Outcome = iota
	// OutcomeUpdated means the region was replaced and verified.
	OutcomeUpdated
	// OutcomeFailed means the run did not complete; see the accompanying error.
	OutcomeFailed
)

// String returns the outcome name.
func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	default:
		return "failed"
	}
}

const (
	defaultDocumentPermissions os.FileMode = 0o644
	backupDirectoryPermissions os.FileMode = 0o755
)

// TemporaryFilePrefix starts the name of the file a document is staged in before it is
// renamed into place.
const TemporaryFilePrefix = ".mdtree-"

const (
	temporaryFilePattern = TemporaryFilePrefix + "*"

	errorReadDocumentFormat    = "read document %s: %w"
	errorExtractRegionFormat   = "extract region from %s: %w"
	errorBackupFormat          = "back up %s to %s: %w"
	errorWriteDocumentFormat   = "write document %s: %w"
	errorRestoreDocumentFormat = "%w; restoring %s from %s: %w"
	errorVerificationFormat    = "%w: %s"
	errorRestoredFormat        = "%w: %w"
	errorCreateTemporaryFormat = "create temporary file in %s: %w"
	errorWriteTemporaryFormat  = "write temporary file %s: %w"
	errorRenameTemporaryFormat = "rename %s to %s: %w"
	errorChmodTemporaryFormat  = "set permissions on %s: %w"
	errorCloseTemporaryFormat  = "close temporary file %s: %w"
	errorSyncTemporaryFormat   = "sync temporary file %s: %w"
	errorEmptyBackupDirectory  = "%w: backup directory is empty"
	errorBackupIsDocument      = "%w: backup %s is the document %s"
)

// ErrDocumentRestored reports that a failed write or verification was rolled back and the
// document holds its content from before the run.
var ErrDocumentRestored = errors.New("document restored from backup")

// ErrVerificationFailed reports that the region read back after writing differed from
// the generated one; the document was restored from the backup.
var ErrVerificationFailed = errors.New("region verification failed after write")

// ErrInvalidBackupPath reports a backup location that cannot hold a copy of the document.
var ErrInvalidBackupPath = errors.New("invalid backup path")

// Synchronizer replaces the managed region of documents with backup and verification.
type Synchronizer struct {
	FileSystem      afero.Fs
	Anchors         Anchors
	BackupDirectory string
	Logger          *zap.Logger
}

// NewSynchronizer returns a Synchronizer operating on fileSystem.
func NewSynchronizer(fileSystem afero.Fs, anchors Anchors, backupDirectory string, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		FileSystem:      fileSystem,
		Anchors:         anchors,
		BackupDirectory: backupDirectory,
		Logger:          utils.LoggerOrNop(logger),
	}
}

// BackupPath returns where the backup of documentPath is written.
func (synchronizer *Synchronizer) BackupPath(documentPath string) string {
	return filepath.Join(synchronizer.BackupDirectory, filepath.Base(documentPath))
}

// Current returns the region currently stored in documentPath.
func (synchronizer *Synchronizer) Current(documentPath string) (Region, error) {
	content, readError := afero.ReadFile(synchronizer.FileSystem, documentPath)
	if readError != nil {
		return Region{}, fmt.Errorf(errorReadDocumentFormat, documentPath, readError)
	}
	region, extractError := Extract(string(content), synchronizer.Anchors)
	if extractError != nil {
		return Region{}, fmt.Errorf(errorExtractRegionFormat, documentPath, extractError)
	}
	return region, nil
}

// Sync makes the region of documentPath equal to newRegion.
//
// The document is read and its region extracted; anchor problems abort before any
// write. An equal region yields OutcomeUnchanged without touching the filesystem.
// Otherwise the document is copied to the backup directory, rewritten atomically with
// the new region, and read back. If the region read back differs, the backup is restored
// and OutcomeFailed is returned with ErrVerificationFailed. The backup is kept and
// overwritten by the next changing run. A backup location that is empty or is the
// document itself fails with ErrInvalidBackupPath before anything is read.
func (synchronizer *Synchronizer) Sync(documentPath string, newRegion string) (Outcome, error) {
	logger := utils.LoggerOrNop(synchronizer.Logger)

	backupPath := synchronizer.BackupPath(documentPath)
	if backupPathError := synchronizer.checkBackupPath(documentPath, backupPath); backupPathError != nil {
		return OutcomeFailed, backupPathError
	}

	originalContent, readError := afero.ReadFile(synchronizer.FileSystem, documentPath)
	if readError != nil {
		return OutcomeFailed, fmt.Errorf(errorReadDocumentFormat, documentPath, readError)
	}
	region, extractError := Extract(string(originalContent), synchronizer.Anchors)
	if extractError != nil {
		return OutcomeFailed, fmt.Errorf(errorExtractRegionFormat, documentPath, extractError)
	}
	if region.Text == newRegion {
		logger.Debug("region unchanged", zap.String("document", documentPath))
		return OutcomeUnchanged, nil
	}

	permissions := defaultDocumentPermissions
	if documentInfo, statError := synchronizer.FileSystem.Stat(documentPath); statError == nil {
		permissions = documentInfo.Mode().Perm()
	}

	if backupError := synchronizer.writeBackup(backupPath, originalContent, permissions); backupError != nil {
		return OutcomeFailed, fmt.Errorf(errorBackupFormat, documentPath, backupPath, backupError)
	}
	logger.Debug("backup written", zap.String("backup", backupPath))

	updatedContent := Replace(string(originalContent), region, newRegion)
	if writeError := synchronizer.writeAtomically(documentPath, []byte(updatedContent), permissions); writeError != nil {
		return synchronizer.restore(documentPath, backupPath, permissions, fmt.Errorf(errorWriteDocumentFormat, documentPath, writeError))
	}

	verifiedRegion, verifyError := synchronizer.Current(documentPath)
	if verifyError != nil {
		return synchronizer.restore(documentPath, backupPath, permissions, fmt.Errorf(errorVerificationFormat, ErrVerificationFailed, verifyError))
	}
	if verifiedRegion.Text != newRegion {
		return synchronizer.restore(documentPath, backupPath, permissions, fmt.Errorf(errorVerificationFormat, ErrVerificationFailed, documentPath))
	}

	logger.Debug("region updated", zap.String("document", documentPath), zap.Int("bytes", len(newRegion)))
	return OutcomeUpdated, nil
}

func (synchronizer *Synchronizer) checkBackupPath(documentPath string, backupPath string) error {
	if strings.TrimSpace(synchronizer.BackupDirectory) == "" {
		return fmt.Errorf(errorEmptyBackupDirectory, ErrInvalidBackupPath)
	}
	if synchronizer.samePath(documentPath, backupPath) {
		return fmt.Errorf(errorBackupIsDocument, ErrInvalidBackupPath, backupPath, documentPath)
	}
	return nil
}

// samePath compares absolute paths; on the OS filesystem symbolic links in the parent
// directories are resolved as well.
func (synchronizer *Synchronizer) samePath(firstPath string, secondPath string) bool {
	firstAbsolute, firstError := filepath.Abs(firstPath)
	secondAbsolute, secondError := filepath.Abs(secondPath)
	if firstError != nil || secondError != nil {
		return filepath.Clean(firstPath) == filepath.Clean(secondPath)
	}
	if firstAbsolute == secondAbsolute {
		return true
	}
	if _, isOperatingSystem := synchronizer.FileSystem.(*afero.OsFs); !isOperatingSystem {
		return false
	}
	firstDirectory, firstResolveError := filepath.EvalSymlinks(filepath.Dir(firstAbsolute))
	secondDirectory, secondResolveError := filepath.EvalSymlinks(filepath.Dir(secondAbsolute))
	if firstResolveError != nil || secondResolveError != nil {
		return false
	}
	return filepath.Join(firstDirectory, filepath.Base(firstAbsolute)) == filepath.Join(secondDirectory, filepath.Base(secondAbsolute))
}

func (synchronizer *Synchronizer) writeBackup(backupPath string, content []byte, permissions os.FileMode) error {
	if mkdirError := synchronizer.FileSystem.MkdirAll(filepath.Dir(backupPath), backupDirectoryPermissions); mkdirError != nil {
		return mkdirError
	}
	return afero.WriteFile(synchronizer.FileSystem, backupPath, content, permissions)
}

// restore copies the backup over documentPath after a failed write or verification.
func (synchronizer *Synchronizer) restore(documentPath string, backupPath string, permissions os.FileMode, cause error) (Outcome, error) {
	logger := utils.LoggerOrNop(synchronizer.Logger)
	logger.Warn("restoring document from backup", zap.String("document", documentPath), zap.String("backup", backupPath), zap.Error(cause))

	backupContent, readError := afero.ReadFile(synchronizer.FileSystem, backupPath)
	if readError != nil {
		return OutcomeFailed, fmt.Errorf(errorRestoreDocumentFormat, cause, documentPath, backupPath, readError)
	}
	if writeError := synchronizer.writeAtomically(documentPath, backupContent, permissions); writeError != nil {
		return OutcomeFailed, fmt.Errorf(errorRestoreDocumentFormat, cause, documentPath, backupPath, writeError)
	}
	return OutcomeFailed, fmt.Errorf(errorRestoredFormat, ErrDocumentRestored, cause)
}

// writeAtomically writes content to a temporary file next to path and renames it over
// path, so readers see either the old or the new document.
func (synchronizer *Synchronizer) writeAtomically(path string, content []byte, permissions os.FileMode) error {
	directory := filepath.Dir(path)
	temporaryFile, createError := afero.TempFile(synchronizer.FileSystem, directory, temporaryFilePattern)
	if createError != nil {
		return fmt.Errorf(errorCreateTemporaryFormat, directory, createError)
	}
	temporaryPath := temporaryFile.Name()

	renamed := false
	defer func() {
		if !renamed {
			_ = synchronizer.FileSystem.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(content); writeError != nil {
		_ = temporaryFile.Close()
		return fmt.Errorf(errorWriteTemporaryFormat, temporaryPath, writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		_ = temporaryFile.Close()
		return fmt.Errorf(errorSyncTemporaryFormat, temporaryPath, syncError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(errorCloseTemporaryFormat, temporaryPath, closeError)
	}
	if chmodError := synchronizer.FileSystem.Chmod(temporaryPath, permissions); chmodError != nil {
		return fmt.Errorf(errorChmodTemporaryFormat, temporaryPath, chmodError)
	}
	if renameError := synchronizer.FileSystem.Rename(temporaryPath, path); renameError != nil {
		return fmt.Errorf(errorRenameTemporaryFormat, temporaryPath, path, renameError)
	}
	renamed = true
	return nil
}
