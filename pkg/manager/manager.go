package manager

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/odsplit/odsplit/pkg/gtfs"
)

// LoadSchedule fetches and parses a GTFS archive from a path or URL.
func LoadSchedule(source string, schedule *gtfs.Schedule) error {
	feedFile, cleanup, err := fetchSource(source)
	if err != nil {
		return err
	}
	defer cleanup()

	return schedule.ParseFile(feedFile)
}

// fetchSource resolves a local path or HTTP URL into an open file. Remote
// sources are spooled to a temp file first; the caller removes it via the
// returned cleanup.
func fetchSource(source string) (*os.File, func(), error) {
	if !isValidUrl(source) {
		file, err := os.Open(source)
		if err != nil {
			return nil, nil, err
		}

		return file, func() { file.Close() }, nil
	}

	tempFile, err := tempDownloadFile(source)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		tempFile.Close()
		os.Remove(tempFile.Name())
	}

	return tempFile, cleanup, nil
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

func tempDownloadFile(source string) (*os.File, error) {
	req, err := http.NewRequest("GET", source, nil)
	if err != nil {
		return nil, err
	}
	req.Header["user-agent"] = []string{"odsplit/1.0"}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", source, resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(os.TempDir(), "odsplit-")
	if err != nil {
		return nil, err
	}

	_, err = io.Copy(tmpFile, resp.Body)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, err
	}

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, err
	}

	log.Debug().Str("source", source).Str("file", tmpFile.Name()).Msg("Downloaded source")

	return tmpFile, nil
}
