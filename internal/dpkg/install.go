package dpkg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/julien-sobczak/rootpkg/internal/control"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/sirupsen/logrus"
)

// PackagesDir returns the directory containing one subdirectory per installed package.
// Ex: /R/System/Packages
func PackagesDir(root string) string {
	return filepath.Join(root, "System", "Packages")
}

// Install unpacks the archive under root and registers it with a pkg-info file.
//
// The package is installed iff its pkg-info file exists. On failure, the
// installation directory created by this call is removed. Scratch
// directories are removed on every exit path.
func Install(ctx context.Context, toolkit system.Toolkit, archive string, root string) (models.Record, error) {
	log := logrus.WithField("archive", archive)

	scratch, err := os.MkdirTemp("", "pkg-install-")
	if err != nil {
		return models.Record{}, models.NewError(models.ErrIO, "scratch directory", err)
	}
	defer func() {
		if err := toolkit.FS.RemoveAll(context.WithoutCancel(ctx), scratch); err != nil {
			log.Warnf("Unable to remove scratch directory %s: %v", scratch, err)
		}
	}()

	// Metadata first
	pkg, err := readMetadata(ctx, toolkit, archive, filepath.Join(scratch, "control"))
	if err != nil {
		return models.Record{}, err
	}
	pkg.Location = archive

	dest := filepath.Join(PackagesDir(root), pkg.DirName())
	log = log.WithFields(logrus.Fields{"package": pkg.Name, "dest": dest})
	if _, err := os.Lstat(dest); err == nil {
		return pkg, models.NewError(models.ErrAlreadyInstalled, dest, fmt.Errorf("%s is already installed", pkg.DirName()))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return pkg, models.NewError(models.ErrIO, dest, err)
	}

	// Then the payload
	log.Infof("Unpacking %s (%s)", pkg.Name, pkg.Version)
	payload := filepath.Join(scratch, "data")
	if err := toolkit.Extractor.ExtractPayload(ctx, archive, payload); err != nil {
		return pkg, models.NewError(models.ErrExtraction, archive, err)
	}
	if err := toolkit.FS.MkdirAll(ctx, PackagesDir(root)); err != nil {
		return pkg, models.NewError(models.ErrIO, PackagesDir(root), err)
	}
	if err := toolkit.FS.CopyRecursive(ctx, payload, dest); err != nil {
		discard(ctx, toolkit, dest, log)
		return pkg, models.NewError(models.ErrIO, dest, err)
	}

	// pkg-info last
	if err := WriteInfo(dest, pkg); err != nil {
		discard(ctx, toolkit, dest, log)
		return pkg, err
	}

	log.Infof("Installed %s", pkg)
	return pkg, nil
}

// readMetadata extracts the archive into dir and parses its control file.
func readMetadata(ctx context.Context, toolkit system.Toolkit, archive string, dir string) (models.Record, error) {
	if err := toolkit.Extractor.ExtractFull(ctx, archive, dir); err != nil {
		return models.Record{}, models.NewError(models.ErrExtraction, archive, err)
	}

	path := filepath.Join(dir, "DEBIAN", "control")
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Record{}, models.NewError(models.ErrParse, archive, fmt.Errorf("unreadable control file: %w", err))
	}
	pkg, err := control.ParseSingle(string(data))
	if err != nil {
		return models.Record{}, models.NewError(models.ErrParse, archive, err)
	}
	if pkg.Name == "" {
		return models.Record{}, models.NewError(models.ErrParse, archive, errors.New("control file has no Package field"))
	}
	return pkg, nil
}

// discard removes a partially installed directory.
func discard(ctx context.Context, toolkit system.Toolkit, dest string, log *logrus.Entry) {
	if err := toolkit.FS.RemoveAll(context.WithoutCancel(ctx), dest); err != nil {
		log.Warnf("Unable to remove %s: %v", dest, err)
	}
}
