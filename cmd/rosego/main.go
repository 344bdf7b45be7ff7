package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rosego/server/internal/config"
	"github.com/rosego/server/internal/core/event"
	coresys "github.com/rosego/server/internal/core/system"
	"github.com/rosego/server/internal/data"
	"github.com/rosego/server/internal/messages"
	"github.com/rosego/server/internal/persist"
	"github.com/rosego/server/internal/scripting"
	"github.com/rosego/server/internal/system"
	"github.com/rosego/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             rosego  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        zone simulation game server        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("ROSEGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("postgres connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	charRepo := persist.NewCharacterRepo(db)

	// 4. Load game data tables
	printSection("data")

	gameData, err := data.LoadGameData(cfg.World.DataDir)
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	printStat("zones", gameData.Zones.Count())
	printStat("npc templates", gameData.Npcs.Count())
	printStat("skills", gameData.Skills.Count())
	printStat("motions", gameData.Motions.Count())
	printStat("weapons", gameData.Items.Count())

	spawnList, err := data.LoadSpawnList(cfg.World.DataDir + "/spawn_list.yaml")
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}
	printStat("spawn points", len(spawnList))

	// 5. Lua combat formulas
	engine, err := scripting.NewEngine(cfg.World.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()
	printOK("combat scripts loaded")
	fmt.Println()

	// 6. Build the world: zone index, stores, spawn points
	zones := world.NewZoneRegistry(gameData.Zones)
	stores := world.NewStores()
	clock := &world.Clock{}
	broadcast := messages.NewBroadcast()
	damageQueue := event.NewQueue[system.DamageEvent]()
	pickupQueue := event.NewQueue[system.PickupItemEvent]()
	xpQueue := event.NewQueue[system.RewardXPEvent]()

	createSpawnPoints(stores, spawnList)

	// 7. Register tick systems
	seed := cfg.World.SpawnSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	skillEffects := system.NewSkillEffectSystem(stores, gameData, clock, broadcast, damageQueue)

	runner := coresys.NewRunner()
	runner.Register(system.NewMovementSystem(stores, zones))
	runner.Register(system.NewCommandSystem(stores, gameData, clock, broadcast, damageQueue, pickupQueue, skillEffects, seed))
	runner.Register(skillEffects)
	runner.Register(system.NewDamageSystem(stores, gameData, broadcast, damageQueue, xpQueue, engine, clock, cfg.World.XPRate))
	runner.Register(system.NewRewardXPSystem(stores, xpQueue))
	runner.Register(system.NewPickupSystem(stores, zones, pickupQueue))
	runner.Register(system.NewMonsterSpawnSystem(stores, zones, gameData, seed, log))
	runner.Register(system.NewExpireSystem(stores, zones, clock))
	runner.Register(system.NewVisibilitySystem(stores, zones, clock))
	runner.Register(system.NewOutputSystem(stores, broadcast))
	saveSystem := system.NewSaveSystem(stores, charRepo, cfg.World.SaveInterval, log)
	runner.Register(saveSystem)
	runner.Register(system.NewCleanupSystem(stores))

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.World.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			clock.Advance(cfg.World.TickRate)
			runner.Tick(cfg.World.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			saveAllCharacters(ctx, saveSystem, charRepo, log)
			log.Info("server stopped")
			return nil
		}
	}
}

// createSpawnPoints registers one spawn point entity per configured point.
// Spawn points live outside the zone slot tables, only their monsters join.
func createSpawnPoints(stores *world.Stores, spawnList []data.SpawnPointData) {
	for i := range spawnList {
		sp := &spawnList[i]
		entity := stores.Entities.CreateEntity()
		stores.SpawnPoint.Set(entity, &world.SpawnPoint{Data: sp})
		stores.Position.Set(entity, &world.Position{
			ZoneID: sp.ZoneID,
			Pos:    world.Vec3{X: sp.X, Y: sp.Y},
		})
	}
}

func saveAllCharacters(ctx context.Context, saveSystem *system.SaveSystem, charRepo *persist.CharacterRepo, log *zap.Logger) {
	rows := saveSystem.Snapshot()
	for i := range rows {
		if err := charRepo.SaveSnapshot(ctx, &rows[i]); err != nil {
			log.Error("save character on shutdown", zap.String("name", rows[i].Name), zap.Error(err))
		}
	}
	if len(rows) > 0 {
		log.Info("characters saved", zap.Int("count", len(rows)))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
