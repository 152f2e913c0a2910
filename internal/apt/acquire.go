package apt

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/sirupsen/logrus"
)

// ArchivesDir returns the directory where downloaded archives are kept.
// Ex: /R/System/Cache/Archives
func ArchivesDir(root string) string {
	return filepath.Join(root, "System", "Cache", "Archives")
}

// Fetch downloads the archive of a catalog record and returns its local path.
// Ex: pool/main/h/hello/hello_2.10-2_amd64.deb => /R/System/Cache/Archives/hello_2.10-2_amd64.deb
func Fetch(ctx context.Context, toolkit system.Toolkit, root string, pkg models.Record) (string, error) {
	if pkg.Origin == nil || pkg.Location == "" {
		return "", models.NewError(models.ErrPackageNotFound, pkg.Name, errors.New("package has no download location"))
	}

	url := pkg.Origin.ArchiveURL(pkg.Location)
	dest := filepath.Join(ArchivesDir(root), filepath.Base(pkg.Location))
	if err := toolkit.FS.MkdirAll(ctx, ArchivesDir(root)); err != nil {
		return "", models.NewError(models.ErrIO, ArchivesDir(root), err)
	}

	logrus.WithFields(logrus.Fields{"package": pkg.Name, "url": url}).Info("Downloading archive")
	if err := toolkit.Downloader.Download(ctx, url, dest); err != nil {
		toolkit.FS.RemoveAll(context.WithoutCancel(ctx), dest)
		return "", models.NewError(models.ErrTransport, url, err)
	}
	return dest, nil
}
