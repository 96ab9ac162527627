package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"projectdrive/models"
	"projectdrive/remotedrive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileFixture struct {
	service *FileService
	drive   *fakeDrive
	index   *fakeFileIndex
	alpha   *remotedrive.Item
	report  *remotedrive.Item
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()

	drive := newFakeDrive()
	projects := drive.addFolder("root", "Projects")
	alpha := drive.addFolder(projects.ID, "Alpha")
	report := drive.addFile(alpha.ID, "report.pdf", []byte("original content"))

	index := newFakeFileIndex()
	index.records[report.ID] = &models.RemoteFileRecord{
		DriveItemID: report.ID,
		Name:        "report.pdf",
		Path:        "/Projects/Alpha/report.pdf",
		ProjectCode: "24ABC01",
		Depth:       2,
	}

	return &fileFixture{
		service: NewFileService(drive, index),
		drive:   drive,
		index:   index,
		alpha:   alpha,
		report:  report,
	}
}

func TestGetDownloadURL(t *testing.T) {
	fx := newFileFixture(t)

	url, err := fx.service.GetDownloadURL(fx.report.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.report.DownloadURL, url)

	// The fresh link and metadata land in the index; the project stamp
	// survives the refresh.
	stored, err := fx.index.GetByItemID(fx.report.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.report.DownloadURL, stored.DownloadURL)
	assert.Equal(t, "24ABC01", stored.ProjectCode)
	assert.Equal(t, 2, stored.Depth)
	assert.Equal(t, "/Projects/Alpha/report.pdf", stored.Path)
}

func TestGetDownloadURLEmptyID(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.service.GetDownloadURL("   ")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindMissingParameter))
	assert.Empty(t, fx.drive.calls)
}

func TestGetDownloadURLFolder(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.service.GetDownloadURL(fx.alpha.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
	assert.Contains(t, err.Error(), "is a folder and has no downloadable content")
}

func TestGetDownloadURLMissingLink(t *testing.T) {
	fx := newFileFixture(t)
	fx.drive.items[fx.report.ID].DownloadURL = ""

	_, err := fx.service.GetDownloadURL(fx.report.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
	assert.Contains(t, err.Error(), "no download url available")
}

func TestGetDownloadURLUnindexedFile(t *testing.T) {
	fx := newFileFixture(t)
	loose := fx.drive.addFile(fx.alpha.ID, "loose.txt", []byte("txt"))

	url, err := fx.service.GetDownloadURL(loose.ID)
	require.NoError(t, err)
	assert.Equal(t, loose.DownloadURL, url)
	assert.Equal(t, 0, fx.index.upserts, "only indexed files are refreshed")
}

func TestDownloadContent(t *testing.T) {
	fx := newFileFixture(t)

	body, err := fx.service.DownloadContent(fx.report.ID)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "original content", string(data))
}

func TestDownloadContentEmptyID(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.service.DownloadContent("")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindMissingParameter))
}

func TestUploadContent(t *testing.T) {
	fx := newFileFixture(t)
	payload := []byte("replacement content, somewhat longer")

	record, err := fx.service.UploadContent(fx.report.ID, bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), record.Size)
	assert.Equal(t, "24ABC01", record.ProjectCode)

	stored, err := fx.index.GetByItemID(fx.report.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), stored.Size)

	body, err := fx.drive.DownloadContent(context.Background(), fx.report.ID)
	require.NoError(t, err)
	defer body.Close()
	data, _ := io.ReadAll(body)
	assert.Equal(t, payload, data)
}

func TestUploadContentGuards(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.service.UploadContent("", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindMissingParameter))

	_, err = fx.service.UploadContent(fx.report.ID, nil, 0)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindMissingParameter))
	assert.Contains(t, err.Error(), "content is required")
}

func TestUploadContentMissingItem(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.service.UploadContent("ghost", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestSearch(t *testing.T) {
	fx := newFileFixture(t)
	fx.drive.addFile(fx.alpha.ID, "quarterly report.xlsx", []byte("xlsx"))

	records, err := fx.service.Search("report", 10)
	require.NoError(t, err)

	require.Len(t, records, 2)
	names := []string{records[0].Name, records[1].Name}
	assert.Contains(t, names, "report.pdf")
	assert.Contains(t, names, "quarterly report.xlsx")

	// Search results are transient; only scans write the index.
	for _, record := range records {
		assert.Equal(t, "", record.ProjectCode)
	}
	assert.Equal(t, 0, fx.index.upserts)
	assert.Empty(t, fx.index.batches)
}

func TestSearchEmptyQuery(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.service.Search("  ", 10)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindMissingParameter))
	assert.Contains(t, err.Error(), "a search query is required")
	assert.Empty(t, fx.drive.calls)
}

func TestSearchDriveFailure(t *testing.T) {
	fx := newFileFixture(t)
	fx.drive.failOn("Search", "",
		models.NewRemoteError(models.KindRateLimited, "activityLimitReached", "throttled"))

	_, err := fx.service.Search("report", 10)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindRateLimited))
}
