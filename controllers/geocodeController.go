package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"safii-be/models"
)

// Geocoder is implemented by services.Geocoder.
type Geocoder interface {
	DescribeCoordinates(ctx context.Context, lat, lng float64) models.Location
}

type GeocodeController struct {
	geocoder Geocoder
}

func NewGeocodeController(geocoder Geocoder) *GeocodeController {
	return &GeocodeController{geocoder: geocoder}
}

// ReverseGeocode turns ?lat=&lng= into a location record and its display
// string. Geocoding failures still answer with the bare coordinates.
func (gc *GeocodeController) ReverseGeocode(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		validationFailed(c, []string{"lat and lng must be numbers"})
		return
	}

	probe := models.NewCoordinateLocation(lat, lng, "")
	if err := probe.Validate(); err != nil {
		validationFailed(c, []string{err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	loc := gc.geocoder.DescribeCoordinates(ctx, lat, lng)
	c.JSON(http.StatusOK, gin.H{
		"location": loc,
		"display":  loc.Display(),
	})
}
