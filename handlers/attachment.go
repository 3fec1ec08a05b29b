package handlers

import (
	"io"
	"net/http"

	"bygg_flow_app_go/db"
	"bygg_flow_app_go/models"
	"bygg_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadAttachmentHandler stores an uploaded file and registers it in the
// request's shared file index
func UploadAttachmentHandler(c echo.Context) error {
	request, err := findRequest(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Request not found"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "File is required"})
	}

	folder := c.FormValue("folder")
	if !models.IsValidFolder(folder) {
		folder = models.FolderOther
	}

	key := services.GenerateAttachmentKey(request.ID, folder, file.Filename)
	result, err := services.Storage.Upload(c.Request().Context(), file, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store file"})
	}

	entry := models.RequestFile{
		ID:         uuid.New().String(),
		RefID:      services.BuildRefID(services.RefKindFile),
		Name:       file.Filename,
		Folder:     folder,
		MimeType:   result.MimeType,
		StorageKey: result.Key,
		Size:       result.FileSize,
	}
	request.Files = append(request.Files, entry)

	if err := db.DB.Save(request).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register file"})
	}

	return c.JSON(http.StatusCreated, entry)
}

// DownloadAttachmentHandler streams a shared file back to the caller
func DownloadAttachmentHandler(c echo.Context) error {
	request, err := findRequest(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Request not found"})
	}

	fileID := c.Param("fileId")
	var entry *models.RequestFile
	for i := range request.Files {
		if request.Files[i].ID == fileID {
			entry = &request.Files[i]
			break
		}
	}
	if entry == nil || entry.StorageKey == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), entry.StorageKey)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+entry.Name+`"`)
	c.Response().Header().Set("Content-Type", contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response().Writer, reader)
	return err
}

// LinkAttachmentInput links a shared file to a document.
type LinkAttachmentInput struct {
	FileID string `json:"file_id"`
}

// LinkAttachmentHandler attaches a request file to a document
func LinkAttachmentHandler(c echo.Context) error {
	doc, err := services.Docs.GetByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch document"})
	}
	if doc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Document not found"})
	}

	var input LinkAttachmentInput
	if err := c.Bind(&input); err != nil || input.FileID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file_id is required"})
	}

	request, err := findRequest(doc.RequestID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Request not found"})
	}

	var entry *models.RequestFile
	for i := range request.Files {
		if request.Files[i].ID == input.FileID {
			entry = &request.Files[i]
			break
		}
	}
	if entry == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}

	for _, att := range doc.Attachments {
		if att.FileID == entry.ID {
			return c.JSON(http.StatusOK, doc)
		}
	}

	doc.Attachments = append(doc.Attachments, models.Attachment{
		FileID:   entry.ID,
		RefID:    entry.RefID,
		Filename: entry.Name,
		Folder:   entry.Folder,
		MimeType: entry.MimeType,
	})
	doc.LinkedFileIDs = append(doc.LinkedFileIDs, entry.ID)

	if _, err := services.Docs.Save(doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save document"})
	}

	return c.JSON(http.StatusOK, doc)
}
