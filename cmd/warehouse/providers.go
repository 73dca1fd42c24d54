package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	appwarehouse "github.com/xiebiao/bookmarket/internal/application/warehouse"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookmarket/internal/interface/http/handler"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/internal/messaging"
	"github.com/xiebiao/bookmarket/pkg/logger"
	"github.com/xiebiao/bookmarket/pkg/mq"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// App 仓库服务进程:HTTP接口 + 订单事件消费者
type App struct {
	cfg      *config.Config
	engine   *gin.Engine
	consumer *mq.ManagedConsumer
	pub      messaging.Publisher
	logger   *zap.Logger
}

// NewApp 组装进程
func NewApp(cfg *config.Config, engine *gin.Engine, consumer *mq.ManagedConsumer, pub messaging.Publisher, l *zap.Logger) *App {
	return &App{cfg: cfg, engine: engine, consumer: consumer, pub: pub, logger: l}
}

// Run 启动HTTP服务和消费者,阻塞直到ctx取消
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("仓库服务HTTP已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.logger.Error("仓库服务异常退出", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP优雅关闭失败", zap.Error(err))
	}
	a.pub.Close()
	a.logger.Info("仓库服务已停止")
	return nil
}

// provideLogger 从配置构建日志器,并注入response包
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	response.SetLogger(l)
	return l, nil
}

// provideBookCache 图书缓存(应用层接口形态)
func provideBookCache(client *goredis.Client, cfg *config.Config) appwarehouse.BookCache {
	return redis.NewBookCache(client, cfg.Cache.BookTTL)
}

// providePublisher 事件发布器
func providePublisher(cfg *config.Config, l *zap.Logger) (messaging.Publisher, error) {
	return messaging.NewAMQPPublisher(cfg.RabbitMQ.URL(), l)
}

// provideConsumer 订单事件消费者(warehouse.order.create队列)
func provideConsumer(cfg *config.Config, applyOrder *appwarehouse.ApplyOrderUseCase, l *zap.Logger) *mq.ManagedConsumer {
	consumer := mq.NewManagedConsumer(cfg.RabbitMQ.URL(), l)
	consumer.Handle(messaging.QueueWarehouseOrderCreate, applyOrder.Handle)
	return consumer
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(cfg *config.Config, bookHandler *handler.BookHandler) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			books.POST("", bookHandler.CreateBook)
			books.POST("/batch", bookHandler.BatchGetBooks)
			books.GET("/:isbn", bookHandler.GetBook)
			books.PUT("/:isbn", bookHandler.UpdateBook)
			books.DELETE("/:isbn", bookHandler.DeleteBook)
			books.POST("/:isbn/listings", bookHandler.AddListing)
		}
	}

	return r
}
