package controllers

import (
	"database/sql"
	"fmt"

	"finreport/metrics"
	"finreport/reports"
	"finreport/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const mockUserID = "63eb226a-d612-412b-b8d4-a3e17b7d2227"

func init() {
	gin.SetMode(gin.TestMode)
	log.SetLevel(log.FatalLevel)
}

func newTestAPI(db *sql.DB) *API {
	api := NewAPI()
	api.MaxPageSize = 50
	api.Metrics = metrics.New()
	api.Reports = reports.NewService(storage.NewPostgres(db), reports.Options{MaxPageSize: 50})
	return api
}

func sessionPayload(userId string) string {
	return fmt.Sprintf("{\"user\":{\"id\":\"%s\", \"role\":\"CUSTOMER\"}}", userId)
}
