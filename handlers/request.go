package handlers

import (
	"net/http"
	"strings"

	"bygg_flow_app_go/db"
	"bygg_flow_app_go/models"
	"bygg_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateRequestInput is the JSON body for registering a new project request.
type CreateRequestInput struct {
	Title         string `json:"title"`
	RequesterKind string `json:"requester_kind"`
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	OrgNumber     string `json:"org_number"`
	Municipality  string `json:"municipality"`
	Description   string `json:"description"`
}

// CreateRequestHandler registers a new construction project request
func CreateRequestHandler(c echo.Context) error {
	var input CreateRequestInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if strings.TrimSpace(input.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title is required"})
	}
	if !models.IsValidRequesterKind(input.RequesterKind) {
		input.RequesterKind = models.RequesterPrivatePerson
	}

	request := models.Request{
		RefID:         services.BuildRefID(services.RefKindProject),
		Title:         input.Title,
		RequesterKind: input.RequesterKind,
		ContactName:   input.ContactName,
		ContactEmail:  input.ContactEmail,
		ContactPhone:  input.ContactPhone,
		OrgNumber:     input.OrgNumber,
		Municipality:  input.Municipality,
		Description:   input.Description,
		Status:        models.RequestStatusOpen,
	}

	if err := db.DB.Create(&request).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create request"})
	}

	return c.JSON(http.StatusCreated, request)
}

// GetRequestsHandler lists project requests, newest first
func GetRequestsHandler(c echo.Context) error {
	var requests []models.Request
	query := db.DB.Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&requests).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch requests"})
	}
	return c.JSON(http.StatusOK, requests)
}

// GetRequestHandler returns a single project request
func GetRequestHandler(c echo.Context) error {
	request, err := findRequest(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Request not found"})
	}
	return c.JSON(http.StatusOK, request)
}

func findRequest(id string) (*models.Request, error) {
	var request models.Request
	if err := db.DB.First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}
