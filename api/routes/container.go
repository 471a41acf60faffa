package routes

import (
	"fmt"

	"venuebook/internal/admission"
	"venuebook/internal/audit"
	"venuebook/internal/cancellation"
	"venuebook/internal/memstore"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/database"
	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"
	"venuebook/pkg/cache"
	"venuebook/pkg/logger"
)

// Repositories is one complete storage backend
type Repositories struct {
	Venues       venues.Repository
	Slots        slots.Repository
	Reservations reservations.Repository
	Waitlist     waitlist.Repository
	Cancellation cancellation.Repository
	Audit        audit.Repository
	Outbox       outbox.Repository
	Tx           transaction.Manager
}

// PostgresRepositories backs every repository with the GORM connection
func PostgresRepositories(db *database.DB) Repositories {
	pg := db.PostgreSQL
	return Repositories{
		Venues:       venues.NewRepository(pg),
		Slots:        slots.NewRepository(pg),
		Reservations: reservations.NewRepository(pg),
		Waitlist:     waitlist.NewRepository(pg),
		Cancellation: cancellation.NewRepository(pg),
		Audit:        audit.NewRepository(pg),
		Outbox:       outbox.NewRepository(pg),
		Tx:           transaction.NewGormManager(pg),
	}
}

// MemoryRepositories backs every repository with one in-process store
func MemoryRepositories(store *memstore.Store) Repositories {
	return Repositories{
		Venues:       store.Venues(),
		Slots:        store.Slots(),
		Reservations: store.Reservations(),
		Waitlist:     store.Waitlist(),
		Cancellation: store.Cancellation(),
		Audit:        store.Audit(),
		Outbox:       store.Outbox(),
		Tx:           transaction.NoopManager{},
	}
}

// Container holds the wired services shared by the HTTP layer and the
// background workers
type Container struct {
	Config *config.Config
	Repos  Repositories
	Logger *logger.Logger
	Cache  cache.Service

	Locker     locks.SlotLocker
	Publisher  *outbox.Publisher
	Accountant *slots.Accountant
	Guard      *reservations.Guard
	Engine     *waitlist.Engine
	Promoter   *waitlist.Promoter
	Trigger    *waitlist.AsyncTrigger
	Sweeper    *waitlist.JobProcessor

	Venues       venues.Service
	Slots        slots.Service
	Reservations reservations.Service
	Waitlist     waitlist.Service
	Admission    admission.Service
	Cancellation cancellation.Service
}

// NewContainer wires the engine. db may be nil when the memory store is used;
// its Redis client, when present, backs the slot locks and the cache.
func NewContainer(cfg *config.Config, db *database.DB, repos Repositories, clk clock.Clock, log *logger.Logger) (*Container, error) {
	if repos.Tx == nil {
		return nil, fmt.Errorf("repositories have no transaction manager")
	}
	if clk == nil {
		clk = clock.System()
	}
	engineCfg := cfg.Engine

	c := &Container{Config: cfg, Repos: repos, Logger: log}

	// in-process lock first so local contenders never reach Redis
	local := locks.NewLocalLocker(engineCfg.LockWait)
	c.Locker = local
	if db != nil && db.Redis != nil {
		c.Cache = cache.NewService(db.Redis)
		c.Locker = locks.ChainLocker{local, locks.NewRedisLocker(db.Redis, engineCfg.LockTTL, engineCfg.LockWait)}
	}

	c.Publisher = outbox.NewPublisher(repos.Outbox, engineCfg.OutboxMaxAttempts)
	c.Accountant = slots.NewAccountant(repos.Reservations, engineCfg.DefaultDuration)
	c.Guard = reservations.NewGuard(repos.Reservations, engineCfg.DefaultDuration, engineCfg.OverlapBuffer)

	c.Engine = waitlist.NewEngine(waitlist.EngineDeps{
		Entries:      repos.Waitlist,
		Reservations: repos.Reservations,
		Audit:        repos.Audit,
		Events:       c.Publisher,
		Clock:        clk,
		OfferTTL:     engineCfg.OfferTTL,
		Logger:       log,
	})
	c.Promoter = waitlist.NewPromoter(c.Locker, repos.Tx, repos.Slots, c.Accountant, c.Engine, log)
	c.Trigger = waitlist.NewAsyncTrigger(c.Promoter, engineCfg.PromotionTimeout, log)
	c.Sweeper = waitlist.NewJobProcessor(repos.Waitlist, c.Engine, repos.Tx, c.Trigger, clk, &waitlist.JobConfig{
		ExpiryCheckInterval: engineCfg.SweepInterval,
		BatchSize:           engineCfg.SweepBatchSize,
	}, log)

	c.Venues = venues.NewService(repos.Venues, c.Cache, log)

	c.Waitlist = waitlist.NewService(waitlist.Deps{
		Entries:      repos.Waitlist,
		Reservations: repos.Reservations,
		Slots:        repos.Slots,
		Accountant:   c.Accountant,
		Engine:       c.Engine,
		Promoter:     c.Promoter,
		Locker:       c.Locker,
		Tx:           repos.Tx,
		Trigger:      c.Trigger,
		Logger:       log,
	})

	c.Slots = slots.NewService(repos.Slots, repos.Venues, c.Accountant, c.Waitlist, c.Trigger, log)

	c.Reservations = reservations.NewService(reservations.Deps{
		Repo:    repos.Reservations,
		Slots:   repos.Slots,
		Audit:   repos.Audit,
		Events:  c.Publisher,
		Tx:      repos.Tx,
		Trigger: c.Trigger,
		Clock:   clk,
		Logger:  log,
	})

	c.Admission = admission.NewService(admission.Deps{
		Reservations: repos.Reservations,
		Slots:        repos.Slots,
		Venues:       c.Venues,
		Accountant:   c.Accountant,
		Guard:        c.Guard,
		Waitlist:     c.Engine,
		Trigger:      c.Trigger,
		Audit:        repos.Audit,
		Events:       c.Publisher,
		Locker:       c.Locker,
		Tx:           repos.Tx,
		Clock:        clk,
		Config:       engineCfg,
		Logger:       log,
	})

	c.Cancellation = cancellation.NewService(cancellation.Deps{
		Repo:         repos.Cancellation,
		Reservations: repos.Reservations,
		Entries:      repos.Waitlist,
		Waitlist:     c.Engine,
		Slots:        repos.Slots,
		Venues:       repos.Venues,
		Accountant:   c.Accountant,
		Guard:        c.Guard,
		Audit:        repos.Audit,
		Events:       c.Publisher,
		Locker:       c.Locker,
		Tx:           repos.Tx,
		Trigger:      c.Trigger,
		Cache:        c.Cache,
		Defaults:     cfg.Policy,
		Clock:        clk,
		Logger:       log,
	})

	return c, nil
}
