package controllers

import (
	"context"
	"encoding/json"
	"time"

	"finreport/metrics"
	"finreport/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var (
	dateFormat = "2006-01-02"
	s1         = `
	{
		"border": [
			{
			"type": "left",
			"color": "#000000",
			"style": 1
			},
			{
			"type": "top",
			"color": "#000000",
			"style": 1
			},
			{
			"type": "right",
			"color": "#000000",
			"style": 1
			},
			{
			"type": "bottom",
			"color": "#000000",
			"style": 1
			}
		],
		"fill": {
			"type": "pattern",
			"pattern": 1,
			"color": ["#96b753"]
		},
		"font": {
			"bold": true
		},
		"alignment": {
			"shrink_to_fit": true,
			"horizontal": "center"
		}
	}
	`
	s2 = `
	{
		"border": [
			{
			"type": "left",
			"color": "#000000",
			"style": 1
			},
			{
			"type": "top",
			"color": "#000000",
			"style": 1
			},
			{
			"type": "right",
			"color": "#000000",
			"style": 1
			},
			{
			"type": "bottom",
			"color": "#000000",
			"style": 1
			}
		],
		"fill": {
			"type": "pattern",
			"pattern": 1
		},
		"alignment": {
			"shrink_to_fit": true
		}
	}
	`
)

type GenericResponse struct {
	Message string `json:"message"`
}

// ReportService is the report engine the handlers delegate to.
type ReportService interface {
	GetReport(ctx context.Context, userId string, req models.ReportRequest) (models.Report, error)
}

type API struct {
	Reports         ReportService
	Metrics         *metrics.Metrics
	DefaultPageSize int
	MaxPageSize     int
	ReportTimeout   time.Duration
}

func NewAPI() *API {
	return &API{DefaultPageSize: 20}
}

func sendError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"message": msg,
	})
}

// ParsePayload reads the session payload set by middlewares.Auth.
func ParsePayload(c *gin.Context) (redis models.SessionPayload) {
	payload := c.Request.Header.Get("payload")

	err := json.Unmarshal([]byte(payload), &redis)
	if err != nil {
		log.Println(err)
	}

	return
}
