package apt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/sirupsen/logrus"
)

// IndexFile is the manifest listing the package lists of the catalog.
const IndexFile = "index"

// CatalogDir returns the directory of the local catalog.
// Ex: /R/System/Cache/Packages
func CatalogDir(root string) string {
	return filepath.Join(root, "System", "Cache", "Packages")
}

// BackupDir returns the directory holding the previous catalog.
// Ex: /R/System/Cache/Packages.bak
func BackupDir(root string) string {
	return CatalogDir(root) + ".bak"
}

// Builder refreshes the local catalog from remote repositories.
type Builder struct {
	Toolkit system.Toolkit

	// Architecture of the package lists (host architecture when empty).
	// Ex: amd64
	Architecture string

	// OnSource is called after each source has been fetched.
	OnSource func(entry models.IndexEntry)
}

// Update rebuilds the catalog under root from the sources, in order.
//
// The previous catalog is backed up first. On failure, the half-built
// catalog is removed and the backup restored before returning the error.
// The index file is written only when every source succeeded.
func (b *Builder) Update(ctx context.Context, root string, sources []models.Source) ([]models.IndexEntry, error) {
	arch := b.Architecture
	if arch == "" {
		var err error
		arch, err = system.HostArchitecture(ctx, b.Toolkit.Host)
		if err != nil {
			return nil, models.NewError(models.ErrIO, "host architecture", err)
		}
	}

	catalogDir := CatalogDir(root)
	backedUp, err := b.backup(ctx, root)
	if err != nil {
		return nil, err
	}

	if err := b.Toolkit.FS.RemoveAll(ctx, catalogDir); err != nil {
		return nil, b.rollback(ctx, root, backedUp, models.NewError(models.ErrIO, catalogDir, err))
	}
	if err := b.Toolkit.FS.MkdirAll(ctx, catalogDir); err != nil {
		return nil, b.rollback(ctx, root, backedUp, models.NewError(models.ErrIO, catalogDir, err))
	}

	var entries []models.IndexEntry
	for _, source := range sources {
		entry := models.IndexEntry{
			ID:           len(entries), // Only deb sources consume an id
			URL:          source.URL,
			Distribution: source.Distribution,
			Component:    source.Component,
		}
		err := b.fetch(ctx, catalogDir, source, entry, arch)
		if models.IsType(err, models.ErrUnsupportedSourceType) {
			logrus.WithField("source", source.String()).Debug("Ignoring source")
			continue
		}
		if err != nil {
			return nil, b.rollback(ctx, root, backedUp, err)
		}
		entries = append(entries, entry)
		if b.OnSource != nil {
			b.OnSource(entry)
		}
	}

	indexPath := filepath.Join(catalogDir, IndexFile)
	if err := b.Toolkit.FS.WriteFile(ctx, indexPath, []byte(FormatIndex(entries))); err != nil {
		return nil, b.rollback(ctx, root, backedUp, models.NewError(models.ErrIO, indexPath, err))
	}

	logrus.WithField("dest", catalogDir).Infof("Catalog updated with %d source(s)", len(entries))
	return entries, nil
}

// fetch downloads and decompresses the package list of a single source.
func (b *Builder) fetch(ctx context.Context, catalogDir string, source models.Source, entry models.IndexEntry, arch string) error {
	if !source.Supported() {
		return models.NewError(models.ErrUnsupportedSourceType, source.String(), fmt.Errorf("unsupported source type %q", source.Type))
	}

	url := source.IndexURL(arch)
	dest := filepath.Join(catalogDir, strconv.Itoa(entry.ID)+".gz")
	log := logrus.WithFields(logrus.Fields{"source": source.String(), "url": url})

	log.Info("Fetching package list")
	if err := b.Toolkit.Downloader.Download(ctx, url, dest); err != nil {
		return models.NewError(models.ErrTransport, url, err)
	}
	if err := b.Toolkit.Decompressor.GunzipInPlace(ctx, dest); err != nil {
		return models.NewError(models.ErrTransport, url, fmt.Errorf("decompression failed: %w", err))
	}
	log.Debugf("Stored package list %d", entry.ID)
	return nil
}

// backup copies the current catalog to the backup directory.
// It reports whether a catalog existed.
func (b *Builder) backup(ctx context.Context, root string) (bool, error) {
	catalogDir, backupDir := CatalogDir(root), BackupDir(root)

	if _, err := os.Stat(catalogDir); errors.Is(err, fs.ErrNotExist) {
		// First update
		return false, nil
	} else if err != nil {
		return false, models.NewError(models.ErrIO, catalogDir, err)
	}

	if err := b.Toolkit.FS.RemoveAll(ctx, backupDir); err != nil {
		return false, models.NewError(models.ErrIO, backupDir, err)
	}
	if err := b.Toolkit.FS.CopyRecursive(ctx, catalogDir, backupDir); err != nil {
		b.Toolkit.FS.RemoveAll(context.WithoutCancel(ctx), backupDir)
		return false, models.NewError(models.ErrIO, backupDir, err)
	}
	logrus.WithField("dest", backupDir).Debug("Backed up catalog")
	return true, nil
}

// rollback replaces the half-built catalog by the backup and returns cause.
func (b *Builder) rollback(ctx context.Context, root string, backedUp bool, cause error) error {
	ctx = context.WithoutCancel(ctx)
	catalogDir, backupDir := CatalogDir(root), BackupDir(root)

	logrus.WithError(cause).Warn("Catalog update failed, rolling back")
	if err := b.Toolkit.FS.RemoveAll(ctx, catalogDir); err != nil {
		return errors.Join(cause, models.NewError(models.ErrIO, catalogDir, err))
	}
	if !backedUp {
		return cause
	}
	if err := b.Toolkit.FS.CopyRecursive(ctx, backupDir, catalogDir); err != nil {
		return errors.Join(cause, models.NewError(models.ErrIO, catalogDir, fmt.Errorf("unable to restore backup: %w", err)))
	}
	return cause
}

// FormatIndex renders the index manifest, one entry per line.
// Ex: 0 http://deb.debian.org/debian stable main
func FormatIndex(entries []models.IndexEntry) string {
	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(entry.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParseIndex reads the index manifest.
func ParseIndex(content string) ([]models.IndexEntry, error) {
	var entries []models.IndexEntry
	for i, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, found %d", i+1, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 0 {
			return nil, fmt.Errorf("line %d: invalid id %q", i+1, fields[0])
		}
		entries = append(entries, models.IndexEntry{
			ID:           id,
			URL:          fields[1],
			Distribution: fields[2],
			Component:    fields[3],
		})
	}
	return entries, nil
}
