package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/session"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	lg := logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.DB, cfg.IsDevelopment())
	if err != nil {
		lg.Fatal().Err(err).Msg("db connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		lg.Fatal().Err(err).Msg("migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	roleRepo := infraRepo.NewRoleGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//ロールの初期データ
	for _, name := range []string{model.RoleNameAdministrator, model.RoleNameUser} {
		if _, err := roleRepo.Ensure(ctx, name); err != nil {
			lg.Fatal().Err(err).Str("role", name).Msg("role bootstrap failed")
		}
	}

	//セッションストア
	var sessionRepo repository.SessionRepository = session.NewMemoryRepository()
	if cfg.Session.Store == config.SessionStorePostgres {
		sessionRepo = infraRepo.NewSessionGormRepository(gormDB)
	}
	sessions := session.NewManager(sessionRepo, cfg.Session.TTL, &realClock{}, &uuidGenerator{})

	m := metrics.New("storefront")

	//期限切れセッションの掃除
	go sessions.Run(ctx, cfg.Session.SweepInterval, lg, m.SetActiveSessions)

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartRepo, productRepo, m, lg)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo, lg)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, roleRepo, hasher, auditRepo, lg)
	auditUC := usecase.NewAuditUsecase(auditRepo)
	storefrontUC := usecase.NewStorefrontUsecase(productRepo, userRepo, cartRepo, lg)

	registerUC := auth.NewRegisterUserUsecase(userRepo, roleRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, sessions)
	logoutUC := auth.NewLogoutUsecase(sessions)
	profileUC := auth.NewProfileUsecase(userRepo, hasher, sessions, cartUC)

	//Handler生成
	cookie := handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	e := server.New(server.Deps{
		Log:        lg,
		Metrics:    m,
		Sessions:   sessions,
		CookieName: cfg.Session.CookieName,
		Handlers: server.Handlers{
			Storefront:   handler.NewStorefrontHandler(storefrontUC),
			Auth:         handler.NewAuthHandler(registerUC, loginUC, logoutUC, profileUC, cookie),
			Cart:         handler.NewCartHandler(cartUC),
			AdminUser:    handler.NewAdminUserHandler(adminUserUC),
			AdminProduct: handler.NewAdminProductHandler(productUC, auditUC),
		},
	})

	//Server起動
	if err := server.Start(ctx, e, ":"+cfg.Port, lg); err != nil {
		lg.Fatal().Err(err).Msg("server stopped")
	}
}
