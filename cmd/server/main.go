package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sys_admin_go/internal/cache"
	"sys_admin_go/internal/config"
	"sys_admin_go/internal/handler"
	"sys_admin_go/internal/middleware"
	"sys_admin_go/internal/repository"
	"sys_admin_go/internal/service"
	"sys_admin_go/pkg/database"
	"sys_admin_go/pkg/log"
	"sys_admin_go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Init("configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	log.Info("Server starting")

	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.RunMigrate(); err != nil {
		log.Fatal("Failed to run migrations", err)
		return
	}
	rdb := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 组装依赖：repository -> service -> handler，全部通过构造函数注入
	userRepo := repository.NewUserRepository(database.DB)
	deptRepo := repository.NewDepartmentRepository(database.DB)
	menuRepo := repository.NewMenuRepository(database.DB)
	loginLogRepo := repository.NewLoginLogRepository(database.DB)

	sessionCache := cache.NewRedisSessionCache(rdb)
	jwtManager := token.NewJWTManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpireHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshTokenExpireDays)*24*time.Hour,
	)

	userService := service.NewUserService(userRepo, deptRepo, cfg.Admin.RootRoleID, cfg.Admin.InitPassword)
	menuService := service.NewMenuService(userRepo, menuRepo)
	loginService := service.NewLoginService(userService, menuService, loginLogRepo, sessionCache, jwtManager)

	loginHandler := handler.NewLoginHandler(loginService)
	userHandler := handler.NewUserHandler(userService)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	admin := r.Group("/admin")
	{
		admin.GET("/captcha/img", loginHandler.Captcha)
		admin.POST("/login", loginHandler.Login)

		authed := admin.Group("", middleware.AuthMiddleware(jwtManager, loginService))
		{
			authed.GET("/account/info", loginHandler.AccountInfo)
			authed.GET("/account/permmenu", loginHandler.PermMenu)
			authed.POST("/account/logout", loginHandler.Logout)

			authed.POST("/sys/user/add", userHandler.Add)
			authed.GET("/sys/user/info", userHandler.Info)
			authed.POST("/sys/user/page", userHandler.Page)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
