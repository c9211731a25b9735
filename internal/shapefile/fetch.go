package shapefile

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/emg-field-ops/fieldmap/internal/resilience"
)

// DownloadZip fetches a shapefile ZIP from url and extracts its
// shapefile components into destDir, returning the .shp path.
func DownloadZip(ctx context.Context, url, destDir string) (string, error) {
	zipPath, err := download(ctx, url, destDir)
	if err != nil {
		return "", err
	}
	defer os.Remove(zipPath)

	return extract(zipPath, destDir)
}

func download(ctx context.Context, url, destDir string) (string, error) {
	client := &http.Client{Timeout: 5 * time.Minute}

	return resilience.DoVal(ctx, resilience.DefaultPolicy(), "shapefile download", func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", eris.Wrap(err, "shapefile: build request")
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", eris.Wrapf(err, "shapefile: download %s", url)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("shapefile: download %s: status %d", url, resp.StatusCode)
			if resilience.RetryableStatus(resp.StatusCode) {
				return "", resilience.MarkTransient(err, resp.StatusCode)
			}
			return "", err
		}

		tmp, err := os.CreateTemp(destDir, "shapefile-*.zip")
		if err != nil {
			return "", eris.Wrap(err, "shapefile: create temp")
		}
		defer tmp.Close()

		n, err := io.Copy(tmp, resp.Body)
		if err != nil {
			os.Remove(tmp.Name())
			return "", eris.Wrap(err, "shapefile: write zip")
		}

		zap.L().Info("downloaded shapefile zip",
			zap.String("url", url), zap.Int64("bytes", n))
		return tmp.Name(), nil
	})
}

// Sidecar files the reader needs next to the .shp.
var shapefileExts = map[string]bool{".shp": true, ".shx": true, ".dbf": true, ".prj": true}

func extract(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrapf(err, "shapefile: open zip %s", zipPath)
	}
	defer r.Close()

	var shpPath string
	for _, f := range r.File {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if !shapefileExts[ext] {
			continue
		}

		// Flatten paths; never trust archive member names as paths
		dest := filepath.Join(destDir, filepath.Base(f.Name))
		if err := extractFile(f, dest); err != nil {
			return "", err
		}
		if ext == ".shp" {
			shpPath = dest
		}
	}

	if shpPath == "" {
		return "", eris.Errorf("shapefile: no .shp member in %s", zipPath)
	}
	return shpPath, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "shapefile: open zip member %s", f.Name)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "shapefile: create %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "shapefile: extract %s", f.Name)
	}
	return nil
}
