package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/gymgate/internal/app/api/server"
	"github.com/fatflowers/gymgate/internal/app/service/audit"
	"github.com/fatflowers/gymgate/internal/app/service/broadcast"
	"github.com/fatflowers/gymgate/internal/app/service/checkin"
	"github.com/fatflowers/gymgate/internal/app/service/deviceauth"
	"github.com/fatflowers/gymgate/internal/app/service/membership"
	"github.com/fatflowers/gymgate/internal/app/service/visit"
	"github.com/fatflowers/gymgate/internal/platform/db"
	"github.com/fatflowers/gymgate/pkg/config"
	"github.com/fatflowers/gymgate/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	membership.Module,
	visit.Module,
	checkin.Module,
	audit.Module,
	broadcast.Module,
	deviceauth.Module,
)
