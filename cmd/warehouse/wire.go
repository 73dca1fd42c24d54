//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	appwarehouse "github.com/xiebiao/bookmarket/internal/application/warehouse"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookmarket/internal/interface/http/handler"
)

// infrastructureSet 基础设施层:配置、日志、数据库、缓存、消息
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	mysql.NewDB,
	redis.NewClient,
	providePublisher,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	provideBookCache,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appwarehouse.NewCreateBookUseCase,
	appwarehouse.NewUpdateBookUseCase,
	appwarehouse.NewDeleteBookUseCase,
	appwarehouse.NewGetBookUseCase,
	appwarehouse.NewAddListingUseCase,
	appwarehouse.NewApplyOrderUseCase,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewBookHandler,
)

// InitializeApp 组装仓库服务进程
// 教学要点:wire在编译期生成依赖注入代码,修改provider后运行
// go generate ./cmd/warehouse 重新生成wire_gen.go
func InitializeApp() (*App, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		handlerSet,
		provideConsumer,
		provideGinEngine,
		NewApp,
	)
	return nil, nil
}
