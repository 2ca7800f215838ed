package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"college-portal-api/importer"
	"college-portal-api/models"
	"college-portal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	objects     map[string][]byte
	archived    map[string][]byte
	archiveErr  error
	listedWith  string
	presignPath string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, archived: map[string][]byte{}}
}

func (f *fakeStorage) GetObject(ctx context.Context, objectPath string) ([]byte, error) {
	data, ok := f.objects[objectPath]
	if !ok {
		return nil, services.ErrNotFound
	}
	return data, nil
}

func (f *fakeStorage) PutObject(ctx context.Context, objectPath string, data []byte) error {
	f.objects[objectPath] = data
	return nil
}

func (f *fakeStorage) ArchiveUpload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	f.archived[objectPath] = data
	return nil
}

func (f *fakeStorage) ListUploads(ctx context.Context, prefix string) ([]models.UploadFile, error) {
	f.listedWith = prefix
	var files []models.UploadFile
	for path, data := range f.archived {
		if strings.HasPrefix(path, prefix) {
			files = append(files, models.UploadFile{Path: path, Size: int64(len(data))})
		}
	}
	return files, nil
}

func (f *fakeStorage) GetPresignedURL(ctx context.Context, objectPath string) (*models.PresignedURLResponse, error) {
	f.presignPath = objectPath
	if _, ok := f.archived[objectPath]; !ok {
		return nil, services.ErrNotFound
	}
	return &models.PresignedURLResponse{URL: "http://minio.local/" + objectPath, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

const testUploadPattern = "uploads/%s/%s/%s"

func setupRouter(t *testing.T) (*gin.Engine, *fakeStorage, *services.CacheService) {
	return setupRouterWithLimit(t, 1<<20)
}

func setupRouterWithLimit(t *testing.T, maxUploadBytes int64) (*gin.Engine, *fakeStorage, *services.CacheService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage := newFakeStorage()
	cache := services.NewCacheService(time.Minute, time.Minute, 30*time.Minute)
	imports := NewImportHandler(importer.New(nil), storage, storage, cache, testUploadPattern, maxUploadBytes)
	collections := NewCollectionHandler(storage, storage, cache, testUploadPattern)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), imports, collections)
	return router, storage, cache
}

func uploadRequest(t *testing.T, target, fileName string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/"+target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const directoryCSV = "Name,Department,Email\n" +
	"A. Sharma,CSE,a.sharma@college.edu\n" +
	"R. Iyer,Physics,r.iyer@college.edu\n" +
	"No Email,Physics,\n"

func TestUploadPreviewConfirm(t *testing.T) {
	router, storage, _ := setupRouter(t)

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var preview struct {
		ID          string                  `json:"id"`
		Target      string                  `json:"target"`
		SourcePath  string                  `json:"sourcePath"`
		Count       int                     `json:"count"`
		SkippedRows []int                   `json:"skippedRows"`
		Records     []models.DirectoryEntry `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, "directory", preview.Target)
	assert.Equal(t, 2, preview.Count)
	assert.Equal(t, []int{3}, preview.SkippedRows)
	assert.Equal(t, "uploads/directory/"+preview.ID+"/faculty.csv", preview.SourcePath)
	assert.Contains(t, storage.archived, preview.SourcePath)
	assert.Empty(t, storage.objects, "nothing is saved before confirm")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+preview.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+preview.ID+"/confirm", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary models.UpsertSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, models.UpsertSummary{Collection: "directory", Created: 2, Total: 2}, summary)
	assert.Contains(t, storage.objects, services.CollectionPath("directory"))

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+preview.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "preview is consumed by confirm")
}

func TestReimportUpdatesInsteadOfDuplicating(t *testing.T) {
	router, _, _ := setupRouter(t)

	for i := 0; i < 2; i++ {
		rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
		require.Equal(t, http.StatusCreated, rec.Code)
		var preview models.ImportPreview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

		rec = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+preview.ID+"/confirm", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/collections/directory", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Data   []models.DirectoryEntry `json:"data"`
		Cached bool                    `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Data, 2)
	assert.False(t, listing.Cached)
}

func TestUploadCourseTypeField(t *testing.T) {
	router, _, _ := setupRouter(t)

	content := "S.No,Course,L-T-P,Day,Time,Venue\n" +
		"1,CSC305 Computer Networks,3-0-2,Mon,10:00-11:00,LH1\n"
	rec := serve(router, uploadRequest(t, "courses", "tt.csv", []byte(content), map[string]string{"courseType": "nep"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var preview struct {
		Records []models.Course `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.Len(t, preview.Records, 1)
	assert.Equal(t, models.CourseTypeNEP, preview.Records[0].CourseType)
	assert.Equal(t, 8.0, preview.Records[0].Credits)
}

func TestUploadRejections(t *testing.T) {
	router, storage, _ := setupRouter(t)

	tests := []struct {
		name     string
		target   string
		fileName string
		content  string
		status   int
	}{
		{"unknown target", "hostels", "a.csv", directoryCSV, http.StatusBadRequest},
		{"unsupported extension", "directory", "faculty.docx", "x", http.StatusBadRequest},
		{"unreadable workbook", "directory", "faculty.xlsx", "not a zip", http.StatusBadRequest},
		{"pdf for a table target", "students", "roster.pdf", "%PDF-1.4", http.StatusBadRequest},
		{"pdf calendar without extractor", "calendar", "calendar.pdf", "%PDF-1.4", http.StatusNotImplemented},
		{"header only", "directory", "faculty.csv", "Name,Email\n", http.StatusUnprocessableEntity},
		{"no header", "directory", "faculty.csv", "foo,bar\n1,2\n", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, uploadRequest(t, tt.target, tt.fileName, []byte(tt.content), nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, storage.archived, "failed imports are not archived")
}

func TestUploadNoDataReportsSkippedRows(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte("Name,Email\nA,not-an-email\n"), nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no valid data found", body["error"])
	assert.Equal(t, []interface{}{float64(1)}, body["skippedRows"])
}

func TestUploadWithoutFile(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/directory", nil)
	rec := serve(router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	router, storage, _ := setupRouterWithLimit(t, 512)

	big := directoryCSV + strings.Repeat("Filler Name,Physics,filler@college.edu\n", 64)
	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(big), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "file too large")
	assert.Empty(t, storage.archived)

	rec = serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUploadSurvivesArchiveFailure(t *testing.T) {
	router, storage, _ := setupRouter(t)
	storage.archiveErr = errors.New("minio down")

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var preview models.ImportPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Empty(t, preview.SourcePath)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+preview.ID+"/source", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiscard(t *testing.T) {
	router, storage, _ := setupRouter(t)

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var preview models.ImportPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/imports/"+preview.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+preview.ID+"/confirm", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, storage.objects)

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/imports/"+preview.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSource(t *testing.T) {
	router, storage, _ := setupRouter(t)

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var preview models.ImportPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+preview.ID+"/source", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, preview.SourcePath, storage.presignPath)

	var url models.PresignedURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &url))
	assert.Equal(t, "http://minio.local/"+preview.SourcePath, url.URL)
}

func TestCollectionListingIsCachedUntilConfirm(t *testing.T) {
	router, _, cache := setupRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/collections/students", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"cached":false}`, rec.Body.String())

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/collections/students", nil))
	assert.JSONEq(t, `{"data":[],"cached":true}`, rec.Body.String())

	rec = serve(router, uploadRequest(t, "students", "roster.csv", []byte("Adm No,Name\n21je0001,Asha Rao\n"), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var preview models.ImportPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+preview.ID+"/confirm", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, found := cache.Get(collectionCacheKey(models.TargetStudents))
	assert.False(t, found)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/collections/students", nil))
	var listing struct {
		Data   []models.Student `json:"data"`
		Cached bool             `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.False(t, listing.Cached)
	require.Len(t, listing.Data, 1)
	assert.Equal(t, "21JE0001", listing.Data[0].AdmNo)
	assert.NotEmpty(t, listing.Data[0].ID)
}

func TestCollectionUnknownTarget(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/collections/hostels", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidateCacheKeepsPreviews(t *testing.T) {
	router, _, cache := setupRouter(t)

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var preview models.ImportPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/collections/calendar", nil))
	_, found := cache.Get(collectionCacheKey(models.TargetCalendar))
	require.True(t, found)

	rec = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, found = cache.Get(collectionCacheKey(models.TargetCalendar))
	assert.False(t, found)
	_, found = cache.GetPreview(preview.ID)
	assert.True(t, found)
}

func TestListUploads(t *testing.T) {
	router, storage, _ := setupRouter(t)

	rec := serve(router, uploadRequest(t, "directory", "faculty.csv", []byte(directoryCSV), nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/directory", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uploads/directory/", storage.listedWith)

	var listing struct {
		Data []models.UploadFile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Data, 1)
}

func TestUploadPrefix(t *testing.T) {
	assert.Equal(t, "uploads/calendar/", uploadPrefix("uploads/%s/%s/%s", models.TargetCalendar))
	assert.Equal(t, "raw/courses-", uploadPrefix("raw/%s-%s", models.TargetCourses))
	assert.Equal(t, "students/", uploadPrefix("static", models.TargetStudents))
}
