package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vishwaguru-be/locator"
)

// Summarizer writes a short description of a constituency and its MLA.
// An empty result means no description.
type Summarizer interface {
	SummarizeRepresentative(ctx context.Context, district, constituency, name string) string
}

// RepresentativeController serves the Maharashtra lookup endpoints
type RepresentativeController struct {
	directory      *locator.Directory
	summarizer     Summarizer
	responsibility locator.ResponsibilityMap
}

// NewRepresentativeController builds the controller. summarizer may be nil.
func NewRepresentativeController(dir *locator.Directory, summarizer Summarizer, responsibility locator.ResponsibilityMap) *RepresentativeController {
	return &RepresentativeController{
		directory:      dir,
		summarizer:     summarizer,
		responsibility: responsibility,
	}
}

// GetRepContacts resolves ?pincode= to constituency and MLA contacts
func (rc *RepresentativeController) GetRepContacts(c *gin.Context) {
	rc.respond(c, c.Query("pincode"))
}

// PostRepContacts resolves {"pincode": "..."} to constituency and MLA contacts
func (rc *RepresentativeController) PostRepContacts(c *gin.Context) {
	var input struct {
		Pincode string `json:"pincode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pincode"})
		return
	}
	rc.respond(c, input.Pincode)
}

func (rc *RepresentativeController) respond(c *gin.Context, pincode string) {
	contacts, err := rc.directory.Resolve(strings.TrimSpace(pincode))
	switch {
	case errors.Is(err, locator.ErrInvalidPincode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pincode"})
		return
	case errors.Is(err, locator.ErrUnknownPincode):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown pincode"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}

	if contacts.MLA.Available() && rc.summarizer != nil {
		if summary := rc.summarizer.SummarizeRepresentative(
			c.Request.Context(), contacts.District, contacts.AssemblyConstituency, contacts.MLA.Name,
		); summary != "" {
			contacts.Description = summary
		}
	}

	c.JSON(http.StatusOK, contacts)
}

// GetDistricts lists the districts covered by the reference data
func (rc *RepresentativeController) GetDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"districts": rc.directory.Districts()})
}

// GetResponsibilityMap serves the category to authority table
func (rc *RepresentativeController) GetResponsibilityMap(c *gin.Context) {
	c.JSON(http.StatusOK, rc.responsibility)
}
