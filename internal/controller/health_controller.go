package controller

import (
	"context"
	"exam_grader_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewHealthController rdb 为 nil 表示未启用 Redis
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// @Summary 健康检查
// @Description 并发检查数据库与 Redis 连接
// @Tags 系统
// @Produce json
// @Success 200 {object} object "{status, components}"
// @Failure 503 {object} object "{status, components}"
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	var dbErr, redisErr error
	var g errgroup.Group
	g.Go(func() error {
		sqlDB, err := c.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(checkCtx)
		}
		dbErr = err
		return err
	})
	if c.Redis != nil {
		g.Go(func() error {
			redisErr = c.Redis.Ping(checkCtx).Err()
			return redisErr
		})
	}
	err := g.Wait()

	components := gin.H{"database": status(dbErr), "redis": "disabled"}
	if c.Redis != nil {
		components["redis"] = status(redisErr)
	}

	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "components": components})
		return
	}
	util.Success(ctx, gin.H{"status": "ok", "components": components})
}

func status(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
