package routers

import (
	"database/sql"

	"finreport/config"
	"finreport/controllers"
	"finreport/metrics"
	"finreport/middlewares"
	"finreport/reports"
	"finreport/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// Route builds the HTTP engine. The returned close func releases the
// database and Redis connections.
func Route(cfg *config.Config) (*gin.Engine, func(), error) {
	db, err := storage.Open(cfg.DBConnectionString)
	if err != nil {
		return nil, nil, err
	}

	key, err := cfg.SessionKeyBytes()
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
		DB:   cfg.RedisDB,
	})

	router := newRouter(cfg, db, rdb, key)

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("closing redis")
		}
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}

	return router, closeFn, nil
}

func newRouter(cfg *config.Config, db *sql.DB, rdb *redis.Client, key []byte) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), CORS())

	api := controllers.NewAPI()
	api.Metrics = metrics.New()
	api.DefaultPageSize = cfg.Report.DefaultPageSize
	api.MaxPageSize = cfg.Report.MaxPageSize
	api.ReportTimeout = cfg.Report.Timeout
	api.Reports = reports.NewService(storage.NewPostgres(db), reports.Options{
		MaxPageSize: cfg.Report.MaxPageSize,
		MaxDepth:    cfg.Report.MaxCategoryDepth,
	})

	router.GET("/metrics", gin.WrapH(api.Metrics.Handler()))

	operations := router.Group("/api/operations")
	operations.Use(middlewares.Auth(rdb, key))
	{
		operations.GET("/report", api.GetOperationsReport)
	}
	return router
}

// CORS Cross Origin Resource Sharing
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, "+
			"Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
