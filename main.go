package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/router"
	"expensetracker/scheduler"
	"expensetracker/service"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title Expense Tracker API
// @version 1.0
// @description Personal finance API for tracking expenses, income, monthly budgets and email reports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "path to an external config file (optional)")
	flag.StringVar(&configFile, "c", "", "path to an external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&showVersion, "v", false, "print version and exit (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		logrus.Info("expensetracker v1.0.0")
		return
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// A .env file is optional; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded environment from .env")
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		logrus.Infof("port overridden from command line: %s", port)
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		logrus.Fatalf("init database: %v", err)
	}

	middleware.InitJWT(cfg)

	mailer := service.NewEmailService(&cfg.Email)
	if !mailer.IsReady() {
		logrus.Warn("email delivery is not configured, alerts and reports will be skipped")
	}

	// The monthly report batch runs on the first of each month. The same
	// batch is reachable via POST /api/v1/reports/monthly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports := service.NewReportService(database.DB, mailer)
	go scheduler.NewMonthlyReportScheduler(reports).Start(ctx)

	r := router.SetupRouter(cfg, mailer)

	logrus.Infof("listening on %s", cfg.Server.Port)
	logrus.Infof("swagger: http://localhost%s/swagger/index.html", cfg.Server.Port)

	if err := r.Run(cfg.Server.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
