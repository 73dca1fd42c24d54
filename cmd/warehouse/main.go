package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/xiebiao/bookmarket/docs"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// @title           BookMarket API
// @version         1.0
// @description     二手书交易平台:图书仓库 / 订单 / 检索三个服务,通过RabbitMQ事件保持MySQL、Redis、Elasticsearch最终一致
// @host            localhost:8080
// @BasePath        /
func main() {
	app, err := InitializeApp()
	if err != nil {
		fmt.Printf("仓库服务初始化失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("==============================================")
	fmt.Println("  BookMarket 仓库服务 (warehouse)")
	fmt.Printf("  HTTP端口:  %d\n", app.cfg.Server.Port)
	fmt.Printf("  消费队列:  %s\n", messaging.QueueWarehouseOrderCreate)
	fmt.Println("  Swagger:   /swagger/index.html")
	fmt.Println("==============================================")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
