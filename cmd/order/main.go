package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookmarket/docs"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	appwarehouse "github.com/xiebiao/bookmarket/internal/application/warehouse"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookmarket/internal/interface/http/handler"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/internal/messaging"
	"github.com/xiebiao/bookmarket/pkg/logger"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// 订单服务:下单走Saga(持久化→缓存→发布事件,失败反向补偿),
// 库存扣减不在本服务内完成,由仓库服务消费order-created事件异步回放
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("订单服务初始化失败: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("日志初始化失败: %v\n", err)
		os.Exit(1)
	}
	response.SetLogger(l)

	db, err := mysql.NewDB(cfg)
	if err != nil {
		l.Fatal("连接MySQL失败", zap.Error(err))
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		l.Fatal("连接Redis失败", zap.Error(err))
	}
	pub, err := messaging.NewAMQPPublisher(cfg.RabbitMQ.URL(), l)
	if err != nil {
		l.Fatal("连接RabbitMQ失败", zap.Error(err))
	}
	defer pub.Close()

	bookRepo := mysql.NewBookRepository(db)
	bookCache := redis.NewBookCache(redisClient, cfg.Cache.BookTTL)
	orderRepo := mysql.NewOrderRepository(db)
	orderCache := redis.NewOrderCache(redisClient, cfg.Cache.OrderTTL)

	// 下单前的图书读取复用仓库侧的cache-aside读路径
	getBook := appwarehouse.NewGetBookUseCase(bookRepo, bookCache, l)

	createOrder := apporder.NewCreateOrderUseCase(getBook, orderRepo, orderCache, pub, l)
	getOrder := apporder.NewGetOrderUseCase(orderRepo, orderCache, l)
	deleteOrder := apporder.NewDeleteOrderUseCase(orderRepo, orderCache, l)
	orderHandler := handler.NewOrderHandler(createOrder, getOrder, deleteOrder)

	engine := newEngine(cfg, orderHandler)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	fmt.Println("==============================================")
	fmt.Println("  BookMarket 订单服务 (order)")
	fmt.Printf("  HTTP端口:  %d\n", cfg.Server.Port)
	fmt.Printf("  发布主题:  %s\n", messaging.TopicOrderCreated)
	fmt.Println("==============================================")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		l.Info("订单服务HTTP已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		l.Error("订单服务异常退出", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn("HTTP优雅关闭失败", zap.Error(err))
	}
	l.Info("订单服务已停止")
}

// newEngine 创建并配置Gin引擎
func newEngine(cfg *config.Config, orderHandler *handler.OrderHandler) *gin.Engine {
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
		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.POST("/batch", orderHandler.BatchGetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
		}
	}

	return r
}
