package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"bygg_flow_app_go/config"
	"bygg_flow_app_go/db"
	"bygg_flow_app_go/models"
	"bygg_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(&models.Request{}, &models.Document{})
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	// Initialize storage and the document store for tests
	if services.Storage == nil {
		services.Storage = services.NewLocalStorage(t.TempDir())
	}
	services.InitializeDocumentStore(testDB)

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:     "test",
		EmailTestMode:   true,
		DisableSnapshot: true,
	})

	return e, c, rec
}

func dbSave(v any) error {
	return db.DB.Save(v).Error
}

func createTestRequest(t *testing.T) *models.Request {
	request := &models.Request{
		RefID:         services.BuildRefID(services.RefKindProject),
		Title:         "Testprojekt",
		RequesterKind: models.RequesterAssociation,
		ContactName:   "Anna Svensson",
		ContactEmail:  "anna@brfeken.se",
		OrgNumber:     "769612-3456",
		Municipality:  "Uppsala",
		Description:   "Takbyte på huvudbyggnaden",
		Status:        models.RequestStatusOpen,
	}
	err := db.DB.Create(request).Error
	assert.NoError(t, err)
	return request
}

func createTestDocument(t *testing.T, request *models.Request) *models.Document {
	doc := services.Docs.CreateFromTemplate(request, models.DocTypeQuote, models.RoleContractor, "Bygg AB")
	_, err := services.Docs.Save(doc)
	assert.NoError(t, err)
	return doc
}
