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
	appsearch "github.com/xiebiao/bookmarket/internal/application/search"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/search"
	"github.com/xiebiao/bookmarket/internal/interface/http/handler"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/internal/messaging"
	"github.com/xiebiao/bookmarket/pkg/logger"
	"github.com/xiebiao/bookmarket/pkg/mq"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// 搜索服务:消费图书事件维护Elasticsearch索引,并提供检索HTTP接口
// 两条消费路径:
//   - 点对点队列(search.book.*):ManagedConsumer,失败重新入队
//   - 广播队列(books.modify,绑定book-*):ResilientConsumer,断线自愈,失败进死信队列
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("搜索服务初始化失败: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("日志初始化失败: %v\n", err)
		os.Exit(1)
	}
	response.SetLogger(l)

	esClient, err := search.NewClient(cfg)
	if err != nil {
		l.Fatal("连接Elasticsearch失败", zap.Error(err))
	}
	index := search.NewBookIndex(esClient, cfg.Elasticsearch.Index)

	syncer := appsearch.NewIndexSyncer(index, l)
	searchBooks := appsearch.NewSearchBooksUseCase(index, l)
	searchHandler := handler.NewSearchHandler(searchBooks)

	// 点对点队列
	consumer := mq.NewManagedConsumer(cfg.RabbitMQ.URL(), l)
	consumer.Handle(messaging.QueueSearchBookCreate, syncer.HandleBookCreated)
	consumer.Handle(messaging.QueueSearchBookUpdate, syncer.HandleBookUpdated)
	consumer.Handle(messaging.QueueSearchBookDelete, syncer.HandleBookDeleted)

	// 广播订阅:book-*全量变更,自愈重连
	resilient := mq.NewResilientConsumer(
		cfg.RabbitMQ.URL(),
		messaging.Exchange,
		messaging.QueueBooksModify,
		messaging.BindingBookEvents,
		syncer.HandleBookModified,
		l,
	)

	engine := newEngine(cfg, searchHandler)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	fmt.Println("==============================================")
	fmt.Println("  BookMarket 搜索服务 (search)")
	fmt.Printf("  HTTP端口:  %d\n", cfg.Server.Port)
	fmt.Printf("  索引:      %s\n", cfg.Elasticsearch.Index)
	fmt.Printf("  消费队列:  %s, %s, %s, %s\n",
		messaging.QueueSearchBookCreate,
		messaging.QueueSearchBookUpdate,
		messaging.QueueSearchBookDelete,
		messaging.QueueBooksModify)
	fmt.Println("==============================================")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 3)
	go func() {
		l.Info("搜索服务HTTP已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			errCh <- err
		}
	}()
	go func() {
		// 自愈消费者自行重连,正常只会因ctx取消而退出
		if err := resilient.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		l.Error("搜索服务异常退出", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn("HTTP优雅关闭失败", zap.Error(err))
	}
	l.Info("搜索服务已停止")
}

// newEngine 创建并配置Gin引擎
func newEngine(cfg *config.Config, searchHandler *handler.SearchHandler) *gin.Engine {
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
		v1.GET("/search", searchHandler.SearchBooks)
		v1.GET("/search/:isbn", searchHandler.GetBook)
	}

	return r
}
