//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/replica/internal/core/observability/log"
	"github.com/zeusync/replica/internal/core/replication"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

func ProvideManager(config replication.Config) *replication.Manager {
	wire.Build(
		log.Provide,
		wire.Bind(new(log.Log), new(*log.Logger)),
		replication.NewManager,
	)
	return nil
}
